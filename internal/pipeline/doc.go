// Package pipeline runs the diagnostic steps behind "torbar doctor".
//
// Each step inspects one part of the routing setup and fills in its fields
// of a model.Diagnosis. Steps run in order; a failing step records its
// error in the diagnosis and, with WithContinueOnError, the remaining steps
// still run so the report covers everything that could be inspected.
// No step changes the system.
package pipeline
