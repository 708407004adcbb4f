package main

import (
	"github.com/bucketdav/bucketdav/cmd"
)

func main() {
	cmd.Execute()
}
