package common

import (
	"io/fs"
)

const AppName = "xmrecipes"

// Log field keys. The formatter displays these in a fixed order so nested
// layers read left to right.
const (
	LogFieldRecipeName   = "recipe"
	LogFieldTaskName     = "task"
	LogFieldActionName   = "action"
	LogFieldExecutorName = "executor"
	LogFieldRunID        = "run_id"
)

// FileMode0755 represents rwxr-xr-x, used for created directories.
const FileMode0755 fs.FileMode = 0755

// DefaultSSHPort is used when a remote host entry omits the port.
const DefaultSSHPort = 22
