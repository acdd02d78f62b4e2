// Package model defines the data types shared across torbar: the derived
// Status, the StatusRecord handed to the bar, the PersistedState kept between
// invocations, recorded Transitions and the doctor Diagnosis.
//
// Types in this package are plain values with no I/O.
package model
