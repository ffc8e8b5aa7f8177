// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/pirog/kalabox-cli/cmd/kbox/commands"

func main() {
	commands.Execute()
}
