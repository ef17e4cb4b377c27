// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/teammv/mvc/cmd/mvc"

func main() {
	cmd.Execute()
}
