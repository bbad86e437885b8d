package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/novasynth/nova"
	"github.com/novasynth/nova/log"
	"github.com/novasynth/nova/midi"
	"github.com/novasynth/nova/oto"
	"github.com/novasynth/nova/synth"
	"github.com/novasynth/nova/ugens"
	"github.com/novasynth/nova/version"
	"github.com/sirupsen/logrus"
)

type setting struct {
	name  string
	value float32
}

func main() {
	help := flag.Bool("h", false, "Show help.")
	configFile := flag.String("config", "", "Engine configuration .yml file. Defaults are used for missing fields.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, files are written to the working directory.")
	play := flag.Bool("p", false, "Play the synthdefs (default behaviour when no other output is defined).")
	seconds := flag.Float64("t", 2, "Seconds to render. When playing, a value <= 0 plays until interrupted.")
	nodeID := flag.Int("id", 1000, "Node ID of the instance; seeds its random generator.")
	rawOut := flag.Bool("r", false, "Output the rendered audio as .raw file. By default, saves interleaved float32 samples.")
	wavOut := flag.Bool("w", false, "Output the rendered audio as .wav file.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	midiIn := flag.String("midi", "", "Listen to the MIDI input whose name starts with this prefix while playing.")
	midiChannel := flag.Int("channel", -1, "MIDI channel to listen to; negative listens to all.")
	versionFlag := flag.Bool("v", false, "Print version.")
	var settings []setting
	flag.Func("set", "Set a parameter before rendering, as `name=value`. Can be repeated.", func(s string) error {
		name, value, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("%q should be of the form name=value", s)
		}
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return err
		}
		settings = append(settings, setting{name, float32(v)})
		return nil
	})
	var bindings []midi.Binding
	flag.Func("cc", "Bind a MIDI controller to a parameter, as `cc=param[:min:max]`. Can be repeated.", func(s string) error {
		b, err := midi.ParseBinding(s)
		if err != nil {
			return err
		}
		bindings = append(bindings, b)
		return nil
	})
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
	if !*rawOut && !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	logger := log.GetLogger()
	cfg := nova.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = nova.LoadConfig(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
			os.Exit(1)
		}
	}
	var audioContext nova.AudioContext
	if *play {
		var err error
		audioContext, err = oto.NewContext(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
	}
	// newSynth builds an instance in a world of its own, so rendering to
	// files and playing never share buses.
	newSynth := func(def *nova.SynthDef) (*synth.Synth, error) {
		w, err := synth.NewWorld(cfg, ugens.Factory{}, synth.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		s, err := synth.New(w, def, int32(*nodeID))
		if err != nil {
			return nil, err
		}
		for _, set := range settings {
			if err := s.SetNamed(set.name, set.value); err != nil {
				s.Free()
				return nil, err
			}
		}
		return s, nil
	}
	process := func(filename string) error {
		outputPath := func(extension string) (string, error) {
			dir := *directory
			if dir == "" {
				var err error
				dir, err = os.Getwd()
				if err != nil {
					return "", fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
				}
			}
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return "", fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			_, name := filepath.Split(filename)
			return filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+extension), nil
		}
		def, err := nova.LoadSynthDef(filename)
		if err != nil {
			return err
		}
		if *rawOut || *wavOut {
			s, err := newSynth(def)
			if err != nil {
				return err
			}
			blocks := int(math.Ceil(*seconds * cfg.SampleRate / float64(cfg.BlockSize)))
			buffer := synth.Render(s.World(), []*synth.Synth{s}, max(blocks, 1))
			s.Free()
			if *rawOut {
				raw, err := nova.Raw(buffer, *pcm)
				if err != nil {
					return fmt.Errorf("could not generate .raw file: %v", err)
				}
				path, err := outputPath(".raw")
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, raw, 0644); err != nil {
					return fmt.Errorf("could not write file %v: %v", path, err)
				}
			}
			if *wavOut {
				bitDepth := 32
				if *pcm {
					bitDepth = 16
				}
				path, err := outputPath(".wav")
				if err != nil {
					return err
				}
				if err := writeWav(path, buffer, cfg, bitDepth); err != nil {
					return err
				}
			}
		}
		if *play {
			s, err := newSynth(def)
			if err != nil {
				return err
			}
			defer s.Free()
			return playSynth(audioContext, s, *seconds, *midiIn, *midiChannel, bindings, logger)
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		files := []string{param}
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			ymlfiles, _ := filepath.Glob(filepath.Join(param, "*.yml"))
			jsonfiles, _ := filepath.Glob(filepath.Join(param, "*.json"))
			files = append(ymlfiles, jsonfiles...)
		}
		for _, file := range files {
			if err := process(file); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
				retval = 1
			}
		}
	}
	if audioContext != nil {
		audioContext.Close()
	}
	os.Exit(retval)
}

func writeWav(path string, buffer []float32, cfg nova.Config, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file %v: %v", path, err)
	}
	if err := nova.WriteWav(f, buffer, int(cfg.SampleRate), cfg.OutputChannels, bitDepth); err != nil {
		f.Close()
		return fmt.Errorf("could not generate .wav file: %v", err)
	}
	return f.Close()
}

// playSynth plays s until the given time has passed or the user interrupts.
// Parameter updates from MIDI go through the driver, between blocks.
func playSynth(audioContext nova.AudioContext, s *synth.Synth, seconds float64, midiIn string, channel int, bindings []midi.Binding, logger logrus.FieldLogger) error {
	driver := synth.NewDriver(s.World(), 256, s)
	if midiIn != "" {
		controller, err := midi.NewController(driver, s, channel, logger, bindings...)
		if err != nil {
			return err
		}
		stop, err := midi.Listen(midiIn, controller)
		if err != nil {
			return err
		}
		defer stop()
	}
	player, err := audioContext.Play(driver)
	if err != nil {
		return err
	}
	defer player.Close()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if seconds > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, time.Duration(seconds*float64(time.Second)))
		defer cancelTimeout()
	}
	<-ctx.Done()
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "nova command line utility for playing .yml/.json synthdef files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
