// Package catalog holds the product data model and the transform stage that
// joins collected metadata with collected reviews into the final catalog.
//
// It also provides the two field normalizers shared by the streaming passes:
// price parsing and keyword matching.
package catalog
