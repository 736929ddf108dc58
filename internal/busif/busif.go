package busif

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/ratbagd/ratbagd/internal/commitsched"
	"github.com/ratbagd/ratbagd/internal/registry"
	"github.com/ratbagd/ratbagd/ratbag"
	drv "github.com/ratbagd/ratbagd/ratbag/driver"
)

// Server owns the bus connection and the set of currently-exported
// objects. One Server per daemon process; there is exactly one
// logical mutator, so nothing here needs its own lock — every method
// and property handler godbus dispatches runs on its own goroutine,
// but dispatch() and dispatchValue() post the actual mutation onto
// the reactor goroutine and block the calling dispatch goroutine for
// the reply, so the object graph itself is still only ever touched
// from that one goroutine, same as the poll tick and commit tasks.
type Server struct {
	conn    *dbus.Conn
	reg     *registry.Registry
	drivers *drv.Registry
	ctx     *ratbag.Context
	sched   *commitsched.Scheduler
	logger  *slog.Logger
	devMode bool

	// post schedules a task onto the reactor goroutine; set by
	// AttachScheduler. Every exported method/property handler routes
	// its object-graph access through dispatch/dispatchValue using
	// this, rather than running inline on godbus's dispatch goroutine.
	post func(func())

	// exported tracks every path/interface pair registered for a
	// sysname so DetachDevice can unregister exactly what AttachDevice
	// registered.
	exported map[string][]exportedObject
}

type exportedObject struct {
	path  dbus.ObjectPath
	iface string
}

// New returns a Server bound to conn, with no scheduler attached yet.
// Call AttachScheduler once before Start (the scheduler's callbacks
// close over this Server, so it cannot be built before the Server
// exists), then Start, then AttachDevice/DetachDevice as the hot-plug
// source and startup enumeration report devices.
func New(conn *dbus.Conn, reg *registry.Registry, drivers *drv.Registry, ctx *ratbag.Context, logger *slog.Logger, devMode bool) *Server {
	return &Server{
		conn:     conn,
		reg:      reg,
		drivers:  drivers,
		ctx:      ctx,
		logger:   logger,
		devMode:  devMode,
		exported: make(map[string][]exportedObject),
	}
}

// AttachScheduler builds the commit scheduler bound to this Server's
// commit-outcome callbacks and posting deferred work through post
// (normally (*reactor.Reactor).Post), breaking the otherwise circular
// construction between Server and commitsched.Scheduler.
func (s *Server) AttachScheduler(post func(func())) *commitsched.Scheduler {
	s.post = post
	s.sched = commitsched.New(post, commitsched.Callbacks{
		OnCommitSucceeded: s.onCommitSucceeded,
		OnCommitFailed:    s.onCommitFailed,
	})
	return s.sched
}

// dispatch posts fn onto the reactor goroutine and blocks the calling
// goroutine (a godbus method-call dispatch) until it has run, so the
// mutation it performs is serialized with the poll tick, the commit
// task, and every other exported method's dispatch. fn itself must
// never block; it runs inline on the reactor goroutine.
func dispatch(post func(func()), fn func() *dbus.Error) *dbus.Error {
	result := make(chan *dbus.Error, 1)
	post(func() { result <- fn() })
	return <-result
}

// dispatchValue is dispatch for a handler that also returns a value,
// e.g. a Properties.Get or Device.Commit reply.
func dispatchValue[T any](post func(func()), fn func() (T, *dbus.Error)) (T, *dbus.Error) {
	type result struct {
		v   T
		err *dbus.Error
	}
	ch := make(chan result, 1)
	post(func() {
		v, err := fn()
		ch <- result{v, err}
	})
	r := <-ch
	return r.v, r.err
}

// Start acquires the well-known bus name and exports the root Manager
// object. Returns an error naming "already in use" distinctly so
// cmd/ratbagd can print the dedicated diagnostic and exit 1.
func (s *Server) Start() error {
	if err := s.exportManager(); err != nil {
		return fmt.Errorf("busif: export manager: %w", err)
	}
	if err := s.conn.Export(introspect.NewIntrospectable(s.rootNode()), RootPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("busif: export introspection: %w", err)
	}
	reply, err := s.conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("busif: request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errNameInUse{}
	}
	return nil
}

// errNameInUse is returned by Start when another instance already
// owns BusName; cmd/ratbagd matches on this type to print "another
// instance is already running".
type errNameInUse struct{}

func (errNameInUse) Error() string { return "bus name already in use" }

// IsNameInUse reports whether err is the failure Start returns when
// the well-known name is already owned.
func IsNameInUse(err error) bool {
	_, ok := err.(errNameInUse)
	return ok
}

func (s *Server) rootNode() *introspect.Node {
	return &introspect.Node{
		Name: string(RootPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: ManagerIface},
		},
	}
}

// AttachDevice publishes the full object subtree for dev: the device
// object and, under it, one object per profile/resolution/button/led.
// Called once a Device has been inserted into the registry and its
// driver's Probe has populated it.
func (s *Server) AttachDevice(dev *ratbag.Device) error {
	var objs []exportedObject

	track := func(path dbus.ObjectPath, iface string) {
		objs = append(objs, exportedObject{path: path, iface: iface})
	}

	if err := s.exportDevice(dev, track); err != nil {
		return err
	}
	for i := range dev.Profiles {
		p := &dev.Profiles[i]
		if err := s.exportProfile(dev, p, track); err != nil {
			return err
		}
		for j := range p.Resolutions {
			if err := s.exportResolution(dev, &p.Resolutions[j], track); err != nil {
				return err
			}
		}
		for k := range p.Buttons {
			if err := s.exportButton(dev, &p.Buttons[k], track); err != nil {
				return err
			}
		}
		for m := range p.Leds {
			if err := s.exportLed(dev, &p.Leds[m], track); err != nil {
				return err
			}
		}
	}

	s.exported[dev.Sysname] = objs
	s.emitDevicesChanged()
	s.logger.Info("device attached to bus", "sysname", dev.Sysname, "objects", len(objs))
	return nil
}

// DetachDevice unregisters every object AttachDevice published for
// dev's sysname. Safe to call even if dev was never attached.
func (s *Server) DetachDevice(sysname string) {
	objs, ok := s.exported[sysname]
	if !ok {
		return
	}
	for _, o := range objs {
		_ = s.conn.Export(nil, o.path, o.iface)
	}
	delete(s.exported, sysname)
	s.emitDevicesChanged()
	s.logger.Info("device detached from bus", "sysname", sysname)
}

// EmitResync emits the device-level Resync signal and re-emits every
// child property as changed, mirroring the commit-failure and poll
// paths: clients are told to discard cached
// state and the daemon immediately gives them something fresh to
// cache instead of waiting for an explicit re-read request.
func (s *Server) EmitResync(dev *ratbag.Device) {
	_ = s.conn.Emit(devicePath(dev.Sysname), DeviceIface+".Resync")
	for i := range dev.Profiles {
		p := &dev.Profiles[i]
		s.emitPropsChanged(profilePath(dev.Sysname, p.Index), ProfileIface, func() map[string]dbus.Variant {
			return profileProps(dev.Sysname, p)
		}, allProfileProps...)
		for j := range p.Resolutions {
			r := &p.Resolutions[j]
			s.emitPropsChanged(resolutionPath(dev.Sysname, p.Index, r.Index), ResolutionIface, func() map[string]dbus.Variant {
				return resolutionProps(r)
			}, allResolutionProps...)
		}
		for k := range p.Buttons {
			b := &p.Buttons[k]
			s.emitPropsChanged(buttonPath(dev.Sysname, p.Index, b.Index), ButtonIface, func() map[string]dbus.Variant {
				return buttonProps(b)
			}, allButtonProps...)
		}
		for m := range p.Leds {
			l := &p.Leds[m]
			s.emitPropsChanged(ledPath(dev.Sysname, p.Index, l.Index), LedIface, func() map[string]dbus.Variant {
				return ledProps(l)
			}, allLedProps...)
		}
	}
}

// onCommitSucceeded and onCommitFailed satisfy commitsched.Callbacks;
// wired by the daemon at startup (internal/commitsched has no
// dependency on busif, avoiding an import cycle).
func (s *Server) onCommitSucceeded(dev *ratbag.Device) {
	for i := range dev.Profiles {
		p := &dev.Profiles[i]
		s.emitPropsChanged(profilePath(dev.Sysname, p.Index), ProfileIface, func() map[string]dbus.Variant {
			return profileProps(dev.Sysname, p)
		}, "IsDirty")
	}
}

func (s *Server) onCommitFailed(dev *ratbag.Device, err error) {
	s.logger.Warn("commit failed, resyncing device", "sysname", dev.Sysname, "error", err)
	s.EmitResync(dev)
}

// loadTestDevice resolves the named test driver and probes a device
// from descriptor json, attaching it to the registry on success.
// descriptor is the raw bytes a testdriver.Descriptor unmarshals from;
// the sysname is derived since a LoadTestDevice call has no raw-HID
// node to draw one from.
func (s *Server) loadTestDevice(descriptor string) error {
	driver, ok := s.drivers.LookupNamed("test")
	if !ok {
		return ratbag.ErrImplementation("no test driver registered")
	}
	prober, ok := driver.(ratbag.TestProber)
	if !ok {
		return ratbag.ErrImplementation("registered test driver does not implement TestProber")
	}
	sysname := fmt.Sprintf("test%d", s.reg.Len())
	dev := ratbag.NewDevice(sysname, ratbag.BusTypeUSB, 0, 0, 0)
	dev.Driver = driver
	if err := prober.TestProbe(dev, []byte(descriptor)); err != nil {
		return err
	}
	if err := dev.ValidateInvariants(); err != nil {
		return err
	}
	s.reg.Insert(dev)
	return s.AttachDevice(dev)
}

func errNotDevBuild() error {
	return ratbag.ErrImplementation("LoadTestDevice is only available in development builds")
}
