package cmd

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/ratbagd/ratbagd/internal/busif"
	"github.com/ratbagd/ratbagd/internal/hotplug"
	"github.com/ratbagd/ratbagd/internal/poll"
	"github.com/ratbagd/ratbagd/internal/reactor"
	"github.com/ratbagd/ratbagd/internal/registry"
	"github.com/ratbagd/ratbagd/ratbag"
	drv "github.com/ratbagd/ratbagd/ratbag/driver"
	"github.com/ratbagd/ratbagd/ratbag/driver/testdriver"
)

// Daemon is the kong command every session's client connects to
// through the bus. It is the default command: "ratbagd" with no
// subcommand behaves the same as "ratbagd daemon".
//
// Wires together the bus surface, hot-plug source, commit scheduler
// and poll loop this daemon runs, behind a command struct with a
// Run(logger) error entrypoint and signal.NotifyContext for graceful
// shutdown.
type Daemon struct {
	BusName       string `help:"Has no effect: the daemon always acquires the fixed name org.ratbagd.Ratbag1." default:"" env:"RATBAGD_BUS_NAME"`
	PollInterval  string `help:"Override the active-resolution poll interval (Go duration syntax); test-only." default:"" env:"RATBAGD_POLL_INTERVAL"`
	DevMode       bool   `help:"Enable the development-only LoadTestDevice bus method." env:"RATBAGD_DEV_MODE"`
	SystemBus     bool   `help:"Connect to the system bus instead of the session bus." default:"true" env:"RATBAGD_SYSTEM_BUS"`
	ReactorQueue  int    `help:"Depth of the reactor's task queue." default:"64" env:"RATBAGD_REACTOR_QUEUE"`
}

// Run is called by kong when the daemon command is executed (or
// implicitly, as the default command).
func (d *Daemon) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.start(ctx, logger)
}

func (d *Daemon) start(ctx context.Context, logger *slog.Logger) error {
	conn, err := d.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	rctx := ratbag.NewContext(d.DevMode)
	reg := registry.New()
	drivers := drv.NewRegistry("test")
	drivers.RegisterNamed("test", func() ratbag.Driver { return testdriver.New() })

	re := reactor.New(d.ReactorQueue)

	server := busif.New(conn, reg, drivers, rctx, logger, d.DevMode)
	server.AttachScheduler(re.Post)

	if err := server.Start(); err != nil {
		return err
	}
	logger.Info("ratbagd bus surface started", "bus_name", busif.BusName)

	hp, err := hotplug.New()
	if err != nil {
		return err
	}
	defer hp.Close()

	interval := poll.DefaultInterval
	if d.PollInterval != "" {
		if parsed, perr := time.ParseDuration(d.PollInterval); perr == nil {
			interval = parsed
		} else {
			logger.Warn("ignoring malformed poll interval override", "value", d.PollInterval, "error", perr)
		}
	}
	loop := poll.New(interval, re.Post, func() { d.pollTick(reg, server, logger) })

	attach := func(ev hotplug.Event) {
		if reg.Lookup(ev.Sysname) != nil {
			return
		}
		dev, err := d.probe(rctx, drivers, ev)
		if err != nil {
			logger.Warn("no driver bound device, skipping", "sysname", ev.Sysname, "error", err)
			return
		}
		reg.Insert(dev)
		if err := server.AttachDevice(dev); err != nil {
			logger.Error("failed to attach device to bus", "sysname", ev.Sysname, "error", err)
			reg.Remove(ev.Sysname)
			return
		}
	}
	detach := func(sysname string) {
		server.DetachDevice(sysname)
		// Remove marks the device removed, which runs the driver's
		// Remove once no commit task still holds a reference.
		reg.Remove(sysname)
	}

	initial, err := hp.Enumerate()
	if err != nil {
		logger.Warn("hot-plug enumeration failed", "error", err)
	}
	for _, ev := range initial {
		attach(ev)
	}

	loop.Start()
	defer loop.Stop()

	go func() {
		for ev := range hp.Events() {
			ev := ev
			re.Post(func() {
				switch ev.Action {
				case hotplug.ActionAdd:
					attach(ev)
				case hotplug.ActionRemove:
					detach(ev.Sysname)
				}
			})
		}
	}()

	re.Run(ctx)
	logger.Info("ratbagd shutting down")
	return nil
}

func (d *Daemon) dial() (*dbus.Conn, error) {
	if d.SystemBus {
		return dbus.ConnectSystemBus()
	}
	return dbus.ConnectSessionBus()
}

// probe resolves the driver for a newly discovered raw-HID node and
// runs its Probe, returning a fully populated, still-detached Device.
// Descriptor-database lookup by (bustype, vendor, product, version)
// is out of scope for this repository: there is no concrete descriptor
// table to consult, so the only driver Lookup can return is the
// context's test-mode fallback, and the test driver's Probe always
// fails. Every hot-plugged node is therefore skipped here; test devices
// are only created through the LoadTestDevice bus method.
func (d *Daemon) probe(rctx *ratbag.Context, drivers *drv.Registry, ev hotplug.Event) (*ratbag.Device, error) {
	key := readDescriptorKey(ev.DevicePath)
	driver, ok := drivers.Lookup(rctx, key)
	if !ok {
		return nil, ratbag.ErrDevice("no driver bound for " + ev.Sysname)
	}
	dev := ratbag.NewDevice(ev.Sysname, key.BusType, key.Vendor, key.Product, key.Version)
	dev.Driver = driver
	if err := driver.Probe(dev); err != nil {
		return nil, err
	}
	if err := dev.ValidateInvariants(); err != nil {
		return nil, err
	}
	return dev, nil
}

func (d *Daemon) pollTick(reg *registry.Registry, server *busif.Server, logger *slog.Logger) {
	reg.Each(func(dev *ratbag.Device) bool {
		refresher, ok := dev.Driver.(ratbag.ResolutionRefresher)
		if !ok {
			return true
		}
		result, err := refresher.RefreshActiveResolution(dev)
		if err != nil {
			logger.Warn("active-resolution poll failed", "sysname", dev.Sysname, "error", err)
			return true
		}
		if result == ratbag.RefreshChanged {
			server.EmitResync(dev)
		}
		return true
	})
}

// readDescriptorKey best-effort parses the HID_ID field of the sysfs
// uevent file adjacent to a raw-HID node's device directory, in the
// "bus:vendor:product" hex-triplet format the kernel emits. Firmware
// version is not exposed there; it is left zero, which only matters
// to descriptor-database matching this repository does not implement.
func readDescriptorKey(devicePath string) drv.DescriptorKey {
	ueventPath := filepath.Join(devicePath, "device", "uevent")
	f, err := os.Open(ueventPath)
	if err != nil {
		return drv.DescriptorKey{}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "HID_ID=") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(line, "HID_ID="), ":")
		if len(parts) != 3 {
			continue
		}
		bus, _ := strconv.ParseUint(parts[0], 16, 16)
		vendor, _ := strconv.ParseUint(parts[1], 16, 16)
		product, _ := strconv.ParseUint(parts[2], 16, 16)
		return drv.DescriptorKey{
			BusType: busTypeFromKernel(uint16(bus)),
			Vendor:  uint16(vendor),
			Product: uint16(product),
		}
	}
	return drv.DescriptorKey{}
}

// busTypeFromKernel maps the kernel's BUS_* uevent constants
// (include/uapi/linux/input.h) onto ratbag.BusType.
func busTypeFromKernel(bus uint16) ratbag.BusType {
	switch bus {
	case 0x03:
		return ratbag.BusTypeUSB
	case 0x05:
		return ratbag.BusTypeBluetooth
	default:
		return ratbag.BusTypeUnknown
	}
}
