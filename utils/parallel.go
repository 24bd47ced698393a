package utils

import (
	"runtime"
)

// ParallelFactor is the default number of workers for parallel validity checks. It is every available processor,
// or a quarter of them once that quarter exceeds 8.
var ParallelFactor = defaultParallelFactor(runtime.GOMAXPROCS(0))

func defaultParallelFactor(procs int) int {
	if procs <= 0 {
		return 1
	}
	if quarter := procs / 4; quarter > 8 {
		return quarter
	}
	return procs
}
