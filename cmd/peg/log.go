package main

import "github.com/tliron/commonlog"

var traceLog = commonlog.GetLogger("peg.trace")
