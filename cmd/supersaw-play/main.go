package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"supersaw"
	"supersaw/daw"
	"supersaw/daw/gomidi"
	"supersaw/version"
)

func main() {
	list := flag.Bool("l", false, "List the available MIDI output ports and exit.")
	port := flag.String("p", "", "Open the first MIDI output whose name starts with the given prefix. By default, the first available output is used.")
	dump := flag.Bool("d", false, "Do not play; print the events of the input files to standard output instead.")
	loopFlag := flag.String("loop", "", "Loop region in seconds, given as start:end.")
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *list {
		context := gomidi.NewContext()
		defer context.Close()
		for device := range context.OutputDevices {
			fmt.Println(device)
		}
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	var loopStart, loopEnd float64
	if *loopFlag != "" {
		if _, err := fmt.Sscanf(*loopFlag, "%f:%f", &loopStart, &loopEnd); err != nil || loopEnd <= loopStart {
			fmt.Fprintf(os.Stderr, "invalid loop region %q, expected start:end\n", *loopFlag)
			os.Exit(1)
		}
	}
	var context *gomidi.RTMIDIContext
	if !*dump {
		context = gomidi.NewContext()
		defer context.Close()
		context.TryToOpenBy(*port, *port == "")
		if !context.HasDeviceOpen() {
			fmt.Fprintf(os.Stderr, "warning: no MIDI output open, events will be dropped\n")
		}
	}
	process := func(filename string) error {
		var project *supersaw.Project
		switch filepath.Ext(filename) {
		case ".mid", ".midi":
			store, err := supersaw.LoadSMF(filename)
			if err != nil {
				return err
			}
			project = supersaw.NewProject(filepath.Base(filename))
			if tempo := store.TempoMap(); len(tempo) > 0 {
				project.BPM = tempo[0].BPM()
			}
			project.PPQ = store.PPQ()
			project.Tracks = []*supersaw.Track{{
				ID:   "track",
				Name: filepath.Base(filename),
				Type: supersaw.TrackMIDI,
				Clips: []*supersaw.Clip{{
					ID:       "clip",
					Name:     filepath.Base(filename),
					Type:     supersaw.ClipMIDI,
					Duration: store.LastEventTime(),
					Events:   store,
				}},
			}}
		default:
			var err error
			project, err = supersaw.ReadProject(filename)
			if err != nil {
				return err
			}
		}
		if *dump {
			for _, e := range project.EventsInRange(0, project.Duration()+1) {
				fmt.Printf("%10.4f %v\n", e.Time, e.Message)
			}
			return nil
		}
		state := daw.NewState(project.Name)
		state.Project = project
		state.Transport.SetBPM(project.BPM)
		if loopEnd > loopStart {
			state.Transport.SetLoop(loopStart, loopEnd)
			state.Transport.SetLoopEnabled(true)
		}
		player := daw.NewPlayer(state, context)
		defer player.Close()
		state.Transport.Play()
		if _, enabled := state.Transport.Loop(); enabled {
			// Looping plays until interrupted.
			select {}
		}
		end := project.Duration()
		for state.Transport.Playing() && state.Transport.Position() < end {
			time.Sleep(50 * time.Millisecond)
		}
		state.Transport.Stop()
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Supersaw command line utility for playing .mid and project files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
