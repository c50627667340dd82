package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	e2eectlVersion = "0.1.0"
)

func main() {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())

	e2eectl := NewAppBuild("e2eectl", "cmd/e2eectl", e2eectlVersion)
	e2eectl.Build(func(gb *GoBuild) {
		gb.StripDebugSymbols()
	})
	e2eectl.Variant("windows", "amd64")
	e2eectl.Variant("linux", "amd64")
	e2eectl.Variant("linux", "arm64")
	e2eectl.Variant("darwin", "amd64")
	e2eectl.Variant("darwin", "arm64")
	b.ImportApp(e2eectl)

	b.Execute()
}
