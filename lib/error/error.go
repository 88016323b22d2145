/*package error contains simple functions for reporting picswarm errors.
*/
package error

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
)

// External reports an error to the log and kills the program. It should be
// used when an error is something a user could reasonably be expected to fix
// through changes in configuration. It has the same signature as the
// standard fmt.*printf() functions.
func External(format string, a ...interface{}) {
	log.Printf("picswarm exited early with the following error:\n"+format, a...)
	os.Exit(1)
}

// Internal reports an error to stderr along with a stack trace and kills the
// program. It should be used when the error requires a code dive to fix,
// like a broken invariant. It has the same signature as the standard
// fmt.*printf() functions.
func Internal(format string, a ...interface{}) {
	log.Println("picswarm exited early with the following internal error:")
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n\n")
	debug.PrintStack()
	os.Exit(1)
}

// Warn reports an error to the log without stopping the program.
func Warn(format string, a ...interface{}) {
	log.Printf("Warning: "+format, a...)
}
