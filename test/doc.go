// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The ExpectEquality() and DemandEquality() functions test for equality with
// the expected value. The Demand variety causes the test to fail immediately
// on failure.
//
// The ExpectSuccess() and ExpectFailure() functions test for "success" or
// "failure" values, as appropriate for the type. For error types a nil value
// indicates success and for boolean types a true value indicates success.
package test
