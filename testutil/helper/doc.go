// Package helper provides test doubles and fixtures shared by the tests of this module.
package helper
