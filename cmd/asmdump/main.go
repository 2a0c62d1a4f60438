package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	asmresolver "github.com/Kinimiwar/AsmResolver"
	"github.com/spf13/cobra"
)

var (
	wantTypes   bool
	wantAsmRefs bool
	wantModule  bool
	outputJSON  bool
)

func prettyPrint(buf []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return out.String()
}

// dumpReport is the --json shape: whichever of the three sections were
// requested on the command line, omitempty so a partial dump doesn't print
// misleading empty arrays for sections that were never asked for.
type dumpReport struct {
	Module       *moduleReport       `json:"module,omitempty"`
	Types        []string            `json:"types,omitempty"`
	AssemblyRefs []assemblyRefReport `json:"assemblyRefs,omitempty"`
}

type moduleReport struct {
	Name string `json:"name"`
	Mvid string `json:"mvid"`
}

type assemblyRefReport struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func dumpModule(img *asmresolver.Image) *moduleReport {
	name, _ := img.Name()
	mvid, _ := img.Mvid()
	return &moduleReport{Name: name, Mvid: fmt.Sprintf("%x", mvid)}
}

func dumpTypes(img *asmresolver.Image) ([]string, error) {
	types, err := img.TopLevelTypes()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		ns, _ := t.Namespace()
		name, _ := t.Name()
		if ns != "" {
			out = append(out, ns+"."+name)
		} else {
			out = append(out, name)
		}
	}
	return out, nil
}

func dumpAssemblyRefs(img *asmresolver.Image) ([]assemblyRefReport, error) {
	refs, err := img.AssemblyReferences()
	if err != nil {
		return nil, err
	}
	out := make([]assemblyRefReport, 0, len(refs))
	for _, ref := range refs {
		name, _ := ref.Name()
		v := ref.Version()
		out = append(out, assemblyRefReport{
			Name:    name,
			Version: fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3]),
		})
	}
	return out, nil
}

func run(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	img, err := asmresolver.NewImage(data)
	if err != nil {
		return err
	}
	defer img.Close()

	var report dumpReport
	if wantModule {
		report.Module = dumpModule(img)
	}
	if wantTypes {
		if report.Types, err = dumpTypes(img); err != nil {
			return err
		}
	}
	if wantAsmRefs {
		if report.AssemblyRefs, err = dumpAssemblyRefs(img); err != nil {
			return err
		}
	}

	if outputJSON {
		buf, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Println(prettyPrint(buf))
		return nil
	}

	if report.Module != nil {
		fmt.Printf("Module: %s\n", report.Module.Name)
		fmt.Printf("Mvid:   %s\n", report.Module.Mvid)
	}
	for _, t := range report.Types {
		fmt.Println(t)
	}
	for _, ref := range report.AssemblyRefs {
		fmt.Printf("%s, Version=%s\n", ref.Name, ref.Version)
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:   "asmdump <metadata-root-file>",
		Short: "Dump ECMA-335 CLI metadata from a standalone metadata-root blob",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().BoolVar(&wantModule, "module", true, "print the Module row")
	root.Flags().BoolVar(&wantTypes, "types", false, "list top-level types")
	root.Flags().BoolVar(&wantAsmRefs, "assembly-refs", false, "list assembly references")
	root.Flags().BoolVar(&outputJSON, "json", false, "print the report as indented JSON")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
