package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/novasynth/nova"
	"github.com/novasynth/nova/log"
	"github.com/novasynth/nova/synth"
	"github.com/novasynth/nova/ugens"
	"github.com/novasynth/nova/version"
)

const reportTemplate = `{{ .Def.Name | default "(unnamed)" | upper }}
{{ repeat 40 "=" }}
parameters: {{ .Def.ParameterCount }}  constants: {{ .Def.ConstantCount }}  buffers: {{ .Def.BufferCount }}
{{- range $name, $slot := .Def.ParameterNames }}
  {{ $name | printf "%-12s" }} slot {{ $slot }} = {{ index $.Def.Parameters $slot }}
{{- end }}

control block ({{ .Layout.Size }} bytes)
  controls {{ .Layout.Controls | printf "%6d" }}
  rates    {{ .Layout.Rates | printf "%6d" }}
  map      {{ .Layout.Mapping | printf "%6d" }}
  wires    {{ .Layout.Wires | printf "%6d" }}

units
{{- range $i, $u := .Def.Graph }}
  {{ $i | printf "%3d" }} {{ $u.Name | printf "%-14s" }} {{ $u.Rate | toString | trunc 6 | printf "%-6s" }}
  {{- range $u.Inputs }} {{ if .IsConstant }}c{{ .Output }}{{ else }}u{{ .Unit }}.{{ .Output }}{{ end }}{{ end }}
{{- end }}

pool: {{ .InUse }} bytes in {{ .Allocations }} allocations, {{ if .Capacity }}capacity {{ .Capacity }} bytes{{ else }}unbounded{{ end }}
`

type report struct {
	Def         *nova.SynthDef
	Layout      synth.Layout
	InUse       int
	Allocations int
	Capacity    int
}

func main() {
	help := flag.Bool("h", false, "Show help.")
	configFile := flag.String("config", "", "Engine configuration .yml file.")
	templateFile := flag.String("template", "", "Use this text/template file instead of the built-in report. Sprig functions are available.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	cfg := nova.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = nova.LoadConfig(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
			os.Exit(1)
		}
	}
	tmpl := template.New("report").Funcs(sprig.TxtFuncMap())
	var err error
	if *templateFile != "" {
		tmpl, err = tmpl.ParseFiles(*templateFile)
		if err == nil {
			tmpl = tmpl.Lookup(filepath.Base(*templateFile))
		}
	} else {
		tmpl, err = tmpl.Parse(reportTemplate)
	}
	if err != nil || tmpl == nil {
		fmt.Fprintf(os.Stderr, "could not parse template: %v\n", err)
		os.Exit(1)
	}
	retval := 0
	for _, file := range flag.Args() {
		if err := inspect(os.Stdout, tmpl, cfg, file); err != nil {
			fmt.Fprintf(os.Stderr, "could not inspect %v: %v\n", file, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

// inspect builds an instance of the synthdef in a throwaway world and
// reports its memory layout.
func inspect(w io.Writer, tmpl *template.Template, cfg nova.Config, file string) error {
	def, err := nova.LoadSynthDef(file)
	if err != nil {
		return err
	}
	pool := synth.NewPool(cfg.PoolSize)
	world, err := synth.NewWorld(cfg, ugens.Factory{}, synth.WithAllocator(pool), synth.WithLogger(log.GetLogger()))
	if err != nil {
		return err
	}
	s, err := synth.New(world, def, 0)
	if err != nil {
		return err
	}
	defer s.Free()
	return tmpl.Execute(w, report{
		Def:         def,
		Layout:      s.Layout(),
		InUse:       pool.InUse(),
		Allocations: pool.Allocations(),
		Capacity:    pool.Capacity(),
	})
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "nova-inspect reports the memory layout of .yml/.json synthdef files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
