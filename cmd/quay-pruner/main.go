// Command quay-pruner deletes ceph-ci image tags whose builds shaman no
// longer lists.
package main

import (
	"os"

	"github.com/ceph/quay-pruner/internal/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
