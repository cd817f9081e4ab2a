package shell

import (
	"fmt"
	"runtime"
)

// memStatusLine reports heap usage. runtime.ReadMemStats is available
// on both the host runtime and tinygo, so one implementation serves
// both targets.
func memStatusLine() string {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return fmt.Sprintf("mem: alloc=%d sys=%d", ms.Alloc, ms.Sys)
}
