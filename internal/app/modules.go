package app

import (
	"github.com/vk/rootloader/internal/handlers"
	"github.com/vk/rootloader/modules/print"
)

// coreModules is the definitive list of all buds that are compiled into
// the rootloader binary.
var coreModules = []handlers.Module{
	&print.Module{},
}
