//go:build linux && !tinygo

package hal

import (
	"encoding/binary"
	"net"
	"os"
	"syscall"
	"unsafe"

	"flimcore/canframe"
)

// SocketCAN is a hal.CanSender/CanReceiver backed by a real or virtual Linux
// CAN interface (e.g. can0, vcan0), for exercising the node stack against
// genuine CAN traffic on a development machine instead of tinygo hardware.
type SocketCAN struct {
	fd   int
	file *os.File
}

const (
	afCAN  = 29
	canRaw = 1

	canEffFlag = 0x80000000
	canRtrFlag = 0x40000000
	canEffMask = 0x1FFFFFFF
	canStdMask = 0x7FF
)

// DialSocketCAN opens a raw CAN socket bound to iface (e.g. "vcan0") in
// non-blocking mode.
func DialSocketCAN(iface string) (*SocketCAN, error) {
	fd, err := syscall.Socket(afCAN, syscall.SOCK_RAW, canRaw)
	if err != nil {
		return nil, err
	}

	netIf, err := net.InterfaceByName(iface)
	if err != nil {
		syscall.Close(fd)
		return nil, err
	}

	type sockaddrCAN struct {
		Family  uint16
		_pad    uint16
		Ifindex int32
		Addr    [8]byte
	}
	sa := sockaddrCAN{Family: afCAN, Ifindex: int32(netIf.Index)}
	if _, _, e := syscall.Syscall(syscall.SYS_BIND, uintptr(fd), uintptr(unsafe.Pointer(&sa)), unsafe.Sizeof(sa)); e != 0 {
		syscall.Close(fd)
		return nil, e
	}

	if err := syscall.SetNonblock(fd, true); err != nil {
		syscall.Close(fd)
		return nil, err
	}

	return &SocketCAN{fd: fd, file: os.NewFile(uintptr(fd), "socketcan")}, nil
}

// Close releases the underlying socket.
func (s *SocketCAN) Close() error { return s.file.Close() }

// Send marshals frame into the Linux can_frame wire layout and writes it.
// priority has no meaning on real CAN hardware beyond arbitration by ID, so
// it is accepted and ignored, matching the plain CanSender contract.
func (s *SocketCAN) Send(f canframe.Frame, priority uint8) bool {
	buf := marshalCanFrame(f)
	n, err := syscall.Write(s.fd, buf)
	return err == nil && n == len(buf)
}

// Available reports whether a frame can be read without blocking.
func (s *SocketCAN) Available() bool {
	buf := make([]byte, 16)
	n, _, err := syscall.Recvfrom(s.fd, buf, syscall.MSG_PEEK|syscall.MSG_DONTWAIT)
	return err == nil && n > 0
}

// Next reads one frame, returning false if none is available.
func (s *SocketCAN) Next() (canframe.Frame, bool) {
	buf := make([]byte, 16)
	n, err := syscall.Read(s.fd, buf)
	if err != nil || n != 16 {
		return canframe.Frame{}, false
	}
	return unmarshalCanFrame(buf), true
}

func marshalCanFrame(f canframe.Frame) []byte {
	id := f.ID
	if f.Ext {
		id |= canEffFlag
	}
	if f.RTR {
		id |= canRtrFlag
	}
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = f.Len
	copy(buf[8:16], f.Data[:])
	return buf
}

func unmarshalCanFrame(data []byte) canframe.Frame {
	id := binary.LittleEndian.Uint32(data[0:4])
	ext := id&canEffFlag != 0
	rtr := id&canRtrFlag != 0
	if ext {
		id &= canEffMask
	} else {
		id &= canStdMask
	}
	n := data[4]
	if n > canframe.MaxDataLen {
		n = canframe.MaxDataLen
	}
	return canframe.New(id, ext, rtr, data[8:8+n])
}
