// Package fs provides the filesystem abstraction used for image files.
//
//   - [LocalFS]: production implementation on top of the os package
//   - [FaultyFS]: test wrapper that injects write, truncate and close faults
//
// Production code uses fs.Default. Tests inject a FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("device.img", fs.Fault{FailAfterBytes: 1024})
package fs
