// Package recurrence decides which calendar days a task occurs on and
// computes the next pending occurrence of a repeating task.
//
// All computations operate on naive calendar dates. Time of day and time
// zones never enter the engine; callers convert "now" into a Date at the
// edge and pass it in explicitly.
package recurrence
