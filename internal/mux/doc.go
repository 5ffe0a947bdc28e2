// Package mux implements the single-pass streaming multiplexers.
//
// A metadata pass serves every category that draws on one collection; a review
// pass serves every parent ASIN that needs reviews from one collection. Both
// passes read their stream exactly once, stop as soon as every consumer is
// satisfied, and never restart. The review pass additionally honors a hard
// scan ceiling so an unsatisfiable request cannot trigger an unbounded read.
package mux
