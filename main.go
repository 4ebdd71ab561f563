// wayfreeze freezes the screen: it captures the current contents of
// every monitor, displays the captures on full-screen input-grabbing
// overlays, and tears them down when Escape is pressed or a pointer
// button is released.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/bnema/wlturbo"

	"github.com/Jappie3/wayfreeze/config"
	"github.com/Jappie3/wayfreeze/freeze"
)

func defaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "wayfreeze", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "wayfreeze", "config.yaml")
}

// loadOptions merges the config file with CLI flags; a flag given on
// the command line always wins over the file.
func loadOptions(args []string) (*config.Options, error) {
	fs := flag.NewFlagSet("wayfreeze", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath(), "path to the yaml configuration file")
	hideCursor := fs.Bool("hide-cursor", false, "hide the cursor when freezing the screen")
	beforeCmd := fs.String("before-freeze-cmd", "", "command to run before freezing the screen")
	beforeTimeout := fs.Int("before-freeze-timeout", 0, "milliseconds to wait after spawning the before-freeze command")
	afterCmd := fs.String("after-freeze-cmd", "", "command to run after freezing the screen")
	afterTimeout := fs.Int("after-freeze-timeout", 0, "milliseconds to wait before spawning the after-freeze command")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "hide-cursor":
			opts.HideCursor = *hideCursor
		case "before-freeze-cmd":
			opts.BeforeFreezeCmd = *beforeCmd
		case "before-freeze-timeout":
			opts.BeforeFreezeTimeout = *beforeTimeout
		case "after-freeze-cmd":
			opts.AfterFreezeCmd = *afterCmd
		case "after-freeze-timeout":
			opts.AfterFreezeTimeout = *afterTimeout
		}
	})

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func main() {
	opts, err := loadOptions(os.Args[1:])
	if err != nil {
		log.Fatalf("wayfreeze: %v", err)
	}

	d, err := wlturbo.Connect("")
	if err != nil {
		log.Fatalf("Failed to connect to Wayland server: %v", err)
	}
	defer d.Close()

	if err := freeze.New(d, opts).Freeze(); err != nil {
		log.Fatalf("wayfreeze: %v", err)
	}
}
