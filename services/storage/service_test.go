package storage

import (
	"errors"
	"testing"

	"github.com/JustVugg/NimbusOS/kernel"
)

type fakeClock struct{ t uint32 }

func (c *fakeClock) Now() uint32 { return c.t }

type countPort struct {
	asserts   int
	deasserts int
}

func (p *countPort) Assert(kernel.BusDevice)   { p.asserts++ }
func (p *countPort) Deassert(kernel.BusDevice) { p.deasserts++ }

const busStorage kernel.BusDevice = 1

func newMounted(t *testing.T) (*Service, *countPort) {
	t.Helper()
	port := &countPort{}
	arb := kernel.NewArbiter(port, busStorage)
	svc := New(newFakeFlash(256*1024, 4096), nil, arb, busStorage)

	clk := &fakeClock{}
	k := kernel.New(kernel.Config{Clock: clk})
	if _, res := k.Register(svc, 0, kernel.PriorityIdle); res != kernel.RegOK {
		t.Fatalf("register: %s", res.String())
	}
	k.Start()
	k.Step()

	if !svc.Mounted() {
		t.Fatalf("mount failed: %v", svc.mountErr)
	}
	return svc, port
}

func TestMountFormatsBlankMedia(t *testing.T) {
	svc, _ := newMounted(t)
	if !svc.Mounted() {
		t.Fatal("not mounted")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	svc, _ := newMounted(t)

	if err := svc.WriteFile("/boot.rc", []byte("uptime\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := svc.ReadFile("/boot.rc", 1024)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "uptime\n" {
		t.Fatalf("data = %q", data)
	}
}

func TestReadFileRespectsLimit(t *testing.T) {
	svc, _ := newMounted(t)

	if err := svc.WriteFile("/big", []byte("0123456789")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := svc.ReadFile("/big", 4)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "0123" {
		t.Fatalf("data = %q", data)
	}
}

func TestListSeesWrittenFiles(t *testing.T) {
	svc, _ := newMounted(t)

	if err := svc.WriteFile("/motd", []byte("hi")); err != nil {
		t.Fatalf("write: %v", err)
	}
	found := false
	err := svc.List("/", func(name string, size int64, dir bool) bool {
		if name == "motd" && !dir {
			found = true
		}
		return true
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !found {
		t.Fatal("motd not listed")
	}
}

func TestRemoveDeletesFile(t *testing.T) {
	svc, _ := newMounted(t)

	if err := svc.WriteFile("/tmp", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := svc.Remove("/tmp"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.ReadFile("/tmp", 16); err == nil {
		t.Fatal("file still readable after remove")
	}
}

func TestAccessBeforeMountFails(t *testing.T) {
	arb := kernel.NewArbiter(&countPort{}, busStorage)
	svc := New(newFakeFlash(256*1024, 4096), nil, arb, busStorage)

	if _, err := svc.ReadFile("/x", 16); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("err = %v, want ErrNotMounted", err)
	}
	if err := svc.WriteFile("/x", nil); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("err = %v, want ErrNotMounted", err)
	}
}

func TestMediaAccessBracketsBus(t *testing.T) {
	svc, port := newMounted(t)
	before := port.deasserts

	if err := svc.WriteFile("/f", []byte("y")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if port.asserts == 0 {
		t.Fatal("bus never asserted")
	}
	if port.deasserts != before+1 {
		t.Fatalf("deasserts = %d, want %d", port.deasserts, before+1)
	}
	if svc.arb.Selected() != kernel.BusNone {
		t.Fatal("device left selected after the transaction")
	}
}

func TestMissingFlashDeviceFailsMountOnce(t *testing.T) {
	svc := New(nil, nil, nil, busStorage)
	clk := &fakeClock{}
	k := kernel.New(kernel.Config{Clock: clk})
	k.Register(svc, 0, kernel.PriorityIdle)
	k.Start()

	k.Step()
	if svc.Mounted() {
		t.Fatal("mounted with no flash")
	}
	if svc.mountErr == nil {
		t.Fatal("no mount error recorded")
	}
}
