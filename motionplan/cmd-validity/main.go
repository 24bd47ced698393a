// Package main checks a list of states against a scene and prints the validity decisions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/motionvalidity/logging"
	"go.viam.com/motionvalidity/motionplan"
	"go.viam.com/motionvalidity/referenceframe"
)

const (
	flagScene     = "scene"
	flagBlacklist = "blacklist"
	flagStates    = "states"
	flagEpsilon   = "epsilon"
	flagMargin    = "margin"
	flagScanAll   = "scan-all"
	flagWorkers   = "workers"
	flagSnapshot  = "snapshot"
	flagContacts  = "contacts"
	flagDebug     = "debug"
	flagLogFile   = "log-file"

	logFileMaxSizeMB = 64
)

var schemas = map[string]*jsonschema.Schema{
	"scene":   jsonschema.Reflect(&referenceframe.SceneConfigJSON{}),
	"states":  jsonschema.Reflect(&[]motionplan.StateConfig{}),
	"checker": jsonschema.Reflect(&motionplan.CheckerConfig{}),
}

func main() {
	logger := logging.NewLogger("validity")
	var fileAppender *logging.FileAppender

	app := &cli.App{
		Name:  "validity",
		Usage: "decide whether robot states are collision free",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.PathFlag{
				Name:  flagLogFile,
				Usage: "also write logs to this size rotated file",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger.SetLevel(logging.DEBUG)
			}
			if path := c.Path(flagLogFile); path != "" {
				fileAppender = logging.NewFileAppender(path, logFileMaxSizeMB)
				logger.AddAppender(fileAppender)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if fileAppender != nil {
				return fileAppender.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "evaluate states against a scene",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     flagScene,
						Required: true,
						Usage:    "scene graph JSON file",
					},
					&cli.PathFlag{
						Name:  flagBlacklist,
						Usage: "file of link pairs, one linkA,linkB per line, never checked against each other",
					},
					&cli.PathFlag{
						Name:  flagStates,
						Usage: "JSON list of states, defaults to a single all zero state",
					},
					&cli.Float64Flag{
						Name:  flagEpsilon,
						Usage: "penetration depth in mm a contact must reach to disqualify a state",
					},
					&cli.Float64Flag{
						Name:  flagMargin,
						Usage: "contact generation margin in mm",
					},
					&cli.BoolFlag{
						Name:  flagScanAll,
						Usage: "report every disqualifying contact instead of stopping at the first",
					},
					&cli.IntFlag{
						Name:  flagWorkers,
						Usage: "number of parallel checkers, 0 uses every core",
					},
					&cli.PathFlag{
						Name:  flagSnapshot,
						Usage: "write the body transforms after the last state to this file, requires a single worker",
					},
					&cli.PathFlag{
						Name:  flagContacts,
						Usage: "write every disqualifying contact to this file, requires a single worker",
					},
				},
				Action: func(c *cli.Context) error {
					return check(c, logger)
				},
			},
			{
				Name:      "schema",
				Usage:     "print the JSON schema of an input file",
				ArgsUsage: "<scene|states|checker>",
				Action: func(c *cli.Context) error {
					return printSchema(c.Args().First())
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func check(c *cli.Context, logger logging.Logger) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	scene, err := referenceframe.ParseSceneJSONFile(c.Path(flagScene))
	if err != nil {
		return err
	}
	logger.Infof("loaded scene %q with %d robot links", scene.Name(), len(scene.RobotLinks()))
	logger.Debugf("scene:\n%s", scene)

	states := []*motionplan.State{{
		Continuous: make([]referenceframe.Input, len(scene.ContinuousJoints())),
		Joints:     make([]referenceframe.Input, len(scene.Joints())),
	}}
	if path := c.Path(flagStates); path != "" {
		//nolint:gosec
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		states, err = motionplan.ParseStatesJSON(f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
	}

	workers := c.Int(flagWorkers)
	single := c.Path(flagSnapshot) != "" || c.Path(flagContacts) != ""
	if single {
		if workers > 1 {
			return errors.Errorf("--%s and --%s require a single worker", flagSnapshot, flagContacts)
		}
		workers = 1
	}

	cfg := motionplan.CheckerConfig{
		BlacklistPath:      c.Path(flagBlacklist),
		PenetrationEpsilon: c.Float64(flagEpsilon),
		ContactMargin:      c.Float64(flagMargin),
		ScanAllContacts:    c.Bool(flagScanAll),
	}
	var opts []motionplan.CheckerOption
	recorder := &motionplan.ContactRecorder{}
	if c.Path(flagContacts) != "" {
		opts = append(opts, motionplan.WithObserver(recorder))
	}

	pool, err := motionplan.NewCheckerPool(ctx, logger, scene, motionplan.NewBoundsFromGraph(scene), cfg, workers, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warnw("failed to close checker pool", "error", err)
		}
	}()

	results, err := pool.ValidStates(ctx, states)
	if err != nil {
		return err
	}
	for i, valid := range results {
		logger.Infow("decision", "state", i, "valid", valid)
	}
	stats := pool.Stats()
	logger.Infow("done",
		"checks", stats.Checks,
		"invalid", stats.Invalid(),
		"out_of_bounds", stats.OutOfBounds,
		"self_collisions", stats.SelfCollisions,
		"world_collisions", stats.WorldCollisions,
	)

	if path := c.Path(flagSnapshot); path != "" {
		if err := writeFile(path, pool.Checker(0).WriteSnapshotJSON); err != nil {
			return err
		}
	}
	if path := c.Path(flagContacts); path != "" {
		summary, err := recorder.Summary()
		if err != nil {
			return err
		}
		logger.Infow("contacts",
			"count", summary.Count, "deepest", summary.Deepest, "mean", summary.Mean, "median", summary.Median)
		if err := writeFile(path, recorder.WriteJSON); err != nil {
			return err
		}
	}
	return nil
}

func printSchema(name string) error {
	schema, ok := schemas[name]
	if !ok {
		return errors.Errorf("unknown schema %q, expected one of %v", name, lo.Keys(schemas))
	}
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

func writeFile(path string, write func(w io.Writer) error) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return write(f)
}
