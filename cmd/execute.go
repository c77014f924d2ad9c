package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ComedicChimera/olive"

	"vela/build"
	"vela/common"
	"vela/deps"
	"vela/logging"
	"vela/resolve"
	"vela/sem"
)

// TODO: implement commands
// check      elaborate without printing the instance tree (editor/IDE usage)
// graph      dump the elaborated instance hierarchy as a tree

// Execute runs the main `vela` application and returns the process exit
// code: 0 on success, 1 if elaboration reported any error diagnostic.
func Execute() int {
	if !initVelaPath() {
		return 1
	}

	cli := olive.NewCLI("vela", "vela elaborates a hardware design's instance hierarchy", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the elaborator log level", false, []string{"silent", "error", "warning", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	elabCmd := cli.AddSubcommand("elaborate", "elaborate a design's instance hierarchy", true)
	elabCmd.AddPrimaryArg("libmap-path", "path to the library map file", true)
	elabCmd.AddStringArg("top", "t", "comma-separated list of explicit top-level cells (library.cell)", false)
	elabCmd.AddFlag("allow-iface-ports", "aip", "allow top-level interface ports by auto-instantiating a default")
	elabCmd.AddFlag("allow-bare-val-param", "abp", "allow bare value parameter assignment in instantiations")

	cli.AddSubcommand("version", "print the vela version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		return 1
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "elaborate":
		return execElaborateCommand(subResult, result.Arguments["loglevel"].(string))
	case "version":
		logging.PrintInfoMessage("Vela Version", common.Version)
		return 0
	}

	return 0
}

// execElaborateCommand runs the elaborate subcommand and returns the
// process exit code.
func execElaborateCommand(result *olive.ArgParseResult, loglevel string) int {
	libmapPath, _ := result.PrimaryArg()

	logging.Initialize(libmapPath, loglevel)

	opts := resolve.DefaultCompilationOptions()
	opts.AllowTopLevelIfacePorts = result.HasFlag("allow-iface-ports")
	opts.AllowBareValParamAssignment = result.HasFlag("allow-bare-val-param")

	target := ""
	if topVal, ok := result.Arguments["top"]; ok {
		target = topVal.(string)
		opts.ExplicitTops = strings.Split(target, ",")
	}

	lctx := &logging.LogContext{FilePath: libmapPath}
	c := build.NewCompiler(opts, lctx)

	tops, success := c.Compile(libmapPath, target, notYetImplementedLoader)
	if !success {
		return 1
	}

	printInstanceForest(tops)
	return 0
}

// notYetImplementedLoader is the LibraryLoader used until a design-unit
// lexer/parser is wired up; it reports every library's files as
// unparseable rather than silently producing an empty registry. Replace
// this once the syntax package gains a parser that turns library source
// files into sem.Definition/sem.ConfigBlock values.
func notYetImplementedLoader(lib *deps.SourceLibrary, files []string) ([]*sem.Definition, []*sem.ConfigBlock, error) {
	return nil, nil, fmt.Errorf("no source parser registered for library `%s` (%d files)", lib.Name, len(files))
}

// printInstanceForest prints the elaborated top-level instances and their
// resolved definitions as a flat summary line per root.
func printInstanceForest(tops []*sem.Instance) {
	for _, top := range tops {
		name := top.Name
		if top.Def != nil && top.Def.Definition != nil {
			name = top.Def.Definition.Name
		}
		logging.PrintInfoMessage("Top", fmt.Sprintf("%s (%s)", strings.Join(top.Path, "."), name))
	}
}

// -----------------------------------------------------------------------------

// initVelaPath checks for a valid VELA_PATH and initializes its global
// value, used to locate standard library maps and cached tables.
func initVelaPath() bool {
	if velaPath, ok := os.LookupEnv("VELA_PATH"); ok {
		finfo, err := os.Stat(velaPath)

		if err != nil {
			logging.PrintErrorMessage("Config Error", fmt.Errorf("error loading VELA_PATH: %s", err.Error()))
			return false
		}

		if !finfo.IsDir() {
			logging.PrintErrorMessage("Config Error", errors.New("error loading VELA_PATH: must point to a directory"))
			return false
		}

		common.InstallPath = velaPath
		return true
	}

	// VELA_PATH is only required to locate standard library maps; a bare
	// elaboration run against an explicit library map works without it.
	return true
}
