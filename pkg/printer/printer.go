package printer

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// Printer types accepted by New
const (
	TypeUSB     = "usb"
	TypeNetwork = "network"
	TypeNone    = "none"
)

// Printer sends raw ESC/POS jobs to a thermal printer.
type Printer interface {
	Print(data []byte) error
	Close() error
	IsConnected() bool
}

// usbPrinter writes each job to a device file such as /dev/usb/lp0.
type usbPrinter struct {
	mu   sync.Mutex
	path string
}

func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Close() error { return nil }

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// networkPrinter dials a raw TCP port (usually 9100) per job. Jobs are
// serialized so two bills never interleave on paper.
type networkPrinter struct {
	mu           sync.Mutex
	address      string
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

// NewNetworkPrinter creates a printer for an address such as "192.168.1.100:9100".
func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{
		address:      address,
		dialTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
	}
}

func (p *networkPrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := net.DialTimeout("tcp", p.address, p.dialTimeout)
	if err != nil {
		return fmt.Errorf("printer: connect %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Close() error { return nil }

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// NullPrinter drops jobs but keeps the last one, for setups without hardware.
type NullPrinter struct {
	mu   sync.Mutex
	last []byte
	jobs int
}

func NewNullPrinter() *NullPrinter {
	return &NullPrinter{}
}

func (p *NullPrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = append([]byte(nil), data...)
	p.jobs++
	return nil
}

// LastJob returns the bytes of the most recent job.
func (p *NullPrinter) LastJob() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Jobs returns how many jobs were printed.
func (p *NullPrinter) Jobs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jobs
}

func (p *NullPrinter) Close() error { return nil }

func (p *NullPrinter) IsConnected() bool { return false }

// New creates the printer for a configured type. usbPath is required for
// usb printers and address for network printers.
func New(printerType, usbPath, address string) (Printer, error) {
	switch printerType {
	case TypeUSB:
		if usbPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return NewUSBPrinter(usbPath), nil
	case TypeNetwork:
		if address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return NewNetworkPrinter(address), nil
	case TypeNone, "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, or none)", printerType)
	}
}
