// Package entity manages normalized collections of uniquely identified
// records: an ordered id list plus an id-to-record map. All operations are
// pure; they return a fresh collection and leave the input untouched, so a
// collection value can be stored in a flux feature slice and compared by
// identity for change detection.
package entity
