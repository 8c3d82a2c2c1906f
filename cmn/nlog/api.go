// Package nlog is Beam's own logger: buffered, timestamped, with
// size-based rotation. Every subsystem logs through here rather than the
// stdlib `log` package. There is no verbosity threshold: every Info,
// Warning and Error call formats and records its line.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package nlog

import (
	"flag"
	"time"
)

var MaxSize int64 = 4 * 1024 * 1024

func InitFlags(flset *flag.FlagSet) {
	flset.BoolVar(&toStderr, "logtostderr", false, "log to standard error instead of files")
	flset.BoolVar(&alsoToStderr, "alsologtostderr", false, "log to standard error as well as files")
}

func Infoln(args ...any)                  { log(sevInfo, 0, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 0, format, args...) }
func InfoDepth(depth int, args ...any)    { log(sevInfo, depth, "", args...) }
func Warningln(args ...any)               { log(sevWarn, 0, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 0, format, args...) }
func Errorln(args ...any)                 { log(sevErr, 0, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 0, format, args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth, "", args...) }

func SetLogDir(dir string) { logDir = dir }
func SetTitle(s string)    { title = s }

// Flush drains buffered lines to their backing files. Pass exit=true on
// shutdown to also close the underlying file handles.
func Flush(exit ...bool) {
	doFlush(len(exit) > 0 && exit[0])
}

// SinceLastWrite reports how long it has been since a line was last
// persisted for the given severity; used by the housekeeping timer to
// decide whether an idle flush is due.
func SinceLastWrite(sev int) time.Duration {
	return nlogs[severity(sev)].since(nowNano())
}
