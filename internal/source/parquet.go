package source

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	parquetsrc "github.com/xitongsys/parquet-go/source"
)

const parquetBatchSize = 256

// metaRow is the product-metadata column set read from parquet partitions.
// Only parquet metadata collections exist in the registry; review collections
// ship as JSONL.
type metaRow struct {
	MainCategory  *string  `parquet:"name=main_category, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Title         *string  `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	AverageRating *float64 `parquet:"name=average_rating, type=DOUBLE, repetitiontype=OPTIONAL"`
	RatingNumber  *int64   `parquet:"name=rating_number, type=INT64, repetitiontype=OPTIONAL"`
	Features      []string `parquet:"name=features, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	Description   []string `parquet:"name=description, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	Price         *string  `parquet:"name=price, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Store         *string  `parquet:"name=store, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Categories    []string `parquet:"name=categories, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	ParentASIN    *string  `parquet:"name=parent_asin, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

func (m metaRow) record() Record {
	rec := Record{}
	putString := func(key string, v *string) {
		if v != nil {
			rec[key] = *v
		}
	}
	putString("main_category", m.MainCategory)
	putString("title", m.Title)
	putString("price", m.Price)
	putString("store", m.Store)
	putString("parent_asin", m.ParentASIN)
	if m.AverageRating != nil {
		rec["average_rating"] = *m.AverageRating
	}
	if m.RatingNumber != nil {
		rec["rating_number"] = *m.RatingNumber
	}
	rec["features"] = m.Features
	rec["description"] = m.Description
	rec["categories"] = m.Categories
	return rec
}

// parquetStream reads metadata rows across one or more parquet partitions,
// decoding in small batches to keep memory flat.
type parquetStream struct {
	paths     []string
	file      parquetsrc.ParquetFile
	reader    *reader.ParquetReader
	remaining int64
	batch     []metaRow
	batchPos  int
}

func newParquetStream(paths []string) *parquetStream {
	return &parquetStream{paths: paths}
}

func (s *parquetStream) Next() (Record, error) {
	for {
		if s.batchPos < len(s.batch) {
			row := s.batch[s.batchPos]
			s.batchPos++
			return row.record(), nil
		}

		if s.reader == nil {
			if len(s.paths) == 0 {
				return nil, io.EOF
			}
			if err := s.openNext(); err != nil {
				return nil, err
			}
		}

		if s.remaining <= 0 {
			if err := s.closeCurrent(); err != nil {
				return nil, err
			}
			continue
		}

		size := int64(parquetBatchSize)
		if size > s.remaining {
			size = s.remaining
		}
		rows := make([]metaRow, size)
		if err := s.reader.Read(&rows); err != nil {
			return nil, fmt.Errorf("read parquet: %w", err)
		}
		s.remaining -= int64(len(rows))
		s.batch = rows
		s.batchPos = 0
		if len(rows) == 0 {
			if err := s.closeCurrent(); err != nil {
				return nil, err
			}
		}
	}
}

func (s *parquetStream) openNext() error {
	path := s.paths[0]
	s.paths = s.paths[1:]

	file, err := local.NewLocalFileReader(path)
	if err != nil {
		return fmt.Errorf("open parquet %s: %w", path, err)
	}

	pr, err := reader.NewParquetReader(file, new(metaRow), 1)
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("read parquet schema %s: %w", path, err)
	}

	s.file = file
	s.reader = pr
	s.remaining = pr.GetNumRows()
	return nil
}

func (s *parquetStream) closeCurrent() error {
	if s.reader != nil {
		s.reader.ReadStop()
		s.reader = nil
	}
	var err error
	if s.file != nil {
		err = s.file.Close()
		s.file = nil
	}
	s.remaining = 0
	return err
}

func (s *parquetStream) Close() error {
	s.paths = nil
	s.batch = nil
	s.batchPos = 0
	return s.closeCurrent()
}
