package hir

// Logging functions, similar to those in "log" package. They can show the
// source-code location being elaborated.

import (
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/grailbio/tmppyc/ast"
)

// Debugf is similar to log.Debug.Printf(...). Arg "node" is the source-code
// location of the message.
func Debugf(node ast.Node, format string, args ...interface{}) {
	if log.At(log.Debug) {
		log.Output(2, log.Debug, node.Pos().String()+":"+node.String()+": "+fmt.Sprintf(format, args...)) // nolint: errcheck
	}
}

// Logf is similar to log.Printf(...). Arg "node" is the source-code location
// of the message.
func Logf(node ast.Node, format string, args ...interface{}) {
	if log.At(log.Info) {
		log.Output(2, log.Info, node.Pos().String()+":"+node.String()+": "+fmt.Sprintf(format, args...)) // nolint: errcheck
	}
}

// Errorf is similar to log.Error.Printf(...). Arg "node" is the source-code
// location of the message.
func Errorf(node ast.Node, format string, args ...interface{}) {
	log.Output(2, log.Error, node.Pos().String()+":"+node.String()+": "+fmt.Sprintf(format, args...)) // nolint: errcheck
}
