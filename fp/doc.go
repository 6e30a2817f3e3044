// Package fp implements 17.14 signed fixed-point arithmetic on a 32-bit
// integer, the representation the MLFQ scheduler policy uses for
// recent_cpu and load_avg.
//
// f = 1<<14. A Value is a plain int32; there is no wrapper type, since the
// only consumer (policy) never mixes fixed-point and integer arithmetic by
// accident (every call site names which conversion it wants).
package fp
