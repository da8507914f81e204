// Package foreman launches external commands inline or in freshly spawned
// terminal windows, tees their output to per-process log files, tracks every
// live child in a registry, and kills whole process trees on demand.
package foreman

// Version is the foreman release version.
const Version = "v0.3.1"
