// Package srcset organizes the compilation units of a multi-module library
// project, the analogue of source sets, into a dependency graph and derives
// what gets archived and published for each unit. srcset is built around the
// core concepts of [Unit] and the graph of their extensions. The core lives in
// [srcsetkore]; this package adds an easy editing API for build scripts,
// tracers and tools for build scripts written in Go.
//
// A build script declares units, lets them extend each other and marks them
// for publication:
//
//	ev := srcset.NewEvaluation(srcset.Config{Group: "org.example"}, nil)
//	err := srcset.Edit(ev, func(ev srcset.EvalEd) {
//		core := ev.Unit("main").WithSources()
//		codec := ev.Unit("codecA").Library(core)
//		ev.Bundle("pkg", core, codec).Publish(srcset.PackageMeta{})
//	})
//
// The resulting [Plan] can be run by a [Builder] with a [CmdToolchain] or be
// handed to any other task runner.
//
// Build descriptions can also be written in HCL, see package hcldesc.
package srcset
