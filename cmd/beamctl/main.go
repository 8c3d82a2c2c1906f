// Command beamctl is the operator-facing CLI for a running beamd: ping
// its service listener, register a service with the locator, or list
// what's currently registered under a name.
//
// Grounded on cmd/cli/cli/app.go's subcommand table shape (one
// cli.Command per verb, global flags for the target address, Action
// closures that build a client and tear it down before returning), with
// urfave/cli's own help/usage templates used as-is rather than the
// teacher's custom appHelpTemplate override, since beamctl's command
// surface is far smaller than the full cluster CLI it's grounded on.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/beamtrade/beam/network"
	"github.com/beamtrade/beam/network/tcp"
	"github.com/beamtrade/beam/routines"
	"github.com/beamtrade/beam/servicelocator"
	"github.com/beamtrade/beam/services"
	"github.com/beamtrade/beam/services/wire"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "beamctl"
	app.Usage = "operate a beamd instance"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "addr", Value: "127.0.0.1:7100", Usage: "service protocol address"},
	}
	app.Commands = []cli.Command{
		pingCommand,
		registerCommand,
		locateCommand,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "beamctl:", err)
		os.Exit(1)
	}
}

func dialer(addr string) func(ctx context.Context) (*network.Channel, error) {
	return func(ctx context.Context) (*network.Channel, error) { return tcp.Dial(ctx, addr) }
}

var pingCommand = cli.Command{
	Name:  "ping",
	Usage: "send a Ping request to beamd's service listener and print the reply",
	Action: func(c *cli.Context) error {
		addr := c.GlobalString("addr")
		ctx := routines.ExternalContext(context.Background())
		sched := routines.New(1)
		defer sched.Shutdown()

		ch, err := tcp.Dial(ctx, addr)
		if err != nil {
			return err
		}
		defer ch.Close()
		proto := services.NewProtocol(sched, ch, wire.JSONCodec{}, services.NewSlotRegistry())
		proto.Serve(ctx)

		result, err := services.SendRequestAs[map[string]string](ctx, proto, "Ping", struct{}{})
		if err != nil {
			return err
		}
		fmt.Println(result["status"])
		return nil
	},
}

var registerCommand = cli.Command{
	Name:      "register",
	Usage:     "register a service with the service locator",
	ArgsUsage: "NAME",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "user", Usage: "service locator username"},
		cli.StringFlag{Name: "pass", Usage: "service locator password"},
		cli.StringSliceFlag{Name: "prop", Usage: "key=value property, may be repeated"},
	},
	Action: func(c *cli.Context) error {
		name := c.Args().First()
		if name == "" {
			return cli.NewExitError("register requires a service NAME", 1)
		}
		ctx := routines.ExternalContext(context.Background())
		sched := routines.New(1)
		defer sched.Shutdown()

		client := servicelocator.New(sched, wire.JSONCodec{}, dialer(c.GlobalString("addr")), c.String("user"), c.String("pass"))
		if err := client.Start(ctx); err != nil {
			return err
		}
		defer client.Close()

		entry, err := client.RegisterService(ctx, name, parseProperties(c.StringSlice("prop")))
		if err != nil {
			return err
		}
		fmt.Printf("registered %q as service id %d\n", name, entry.ID)
		return nil
	},
}

var locateCommand = cli.Command{
	Name:      "locate",
	Usage:     "list every service registered under a name",
	ArgsUsage: "NAME",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "user", Usage: "service locator username"},
		cli.StringFlag{Name: "pass", Usage: "service locator password"},
	},
	Action: func(c *cli.Context) error {
		name := c.Args().First()
		if name == "" {
			return cli.NewExitError("locate requires a service NAME", 1)
		}
		ctx := routines.ExternalContext(context.Background())
		sched := routines.New(1)
		defer sched.Shutdown()

		client := servicelocator.New(sched, wire.JSONCodec{}, dialer(c.GlobalString("addr")), c.String("user"), c.String("pass"))
		if err := client.Start(ctx); err != nil {
			return err
		}
		defer client.Close()

		entries, err := client.Locate(ctx, name)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%d\t%s\t%v\n", e.ID, e.Name, e.Properties)
		}
		return nil
	},
}

func parseProperties(pairs []string) map[string]any {
	props := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		props[k] = v
	}
	return props
}
