// Package srcsetkore implements the core model of srcset: a registry of named
// compilation units ("source sets"), the dependency graph between them, the
// archives derived for each unit and the packages published from those
// archives. It uses idiomatic Go error handling, which can make writing build
// descriptions a bit cumbersome. An easy-to-use wrapper is provided by the
// [srcset] package.
//
// All state is owned by one [Evaluation] of a build description. Nothing is
// persisted across evaluations and nothing in this package is safe for
// concurrent mutation. Compiling and archiving is left to a [Toolchain]
// supplied by the host; this package only declares what has to be built and in
// which order, see [Plan] and [Builder].
//
// [srcset]: https://pkg.go.dev/git.fractalqb.de/fractalqb/srcset
package srcsetkore
