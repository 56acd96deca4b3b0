//go:build windows

package sysquery

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Lock detection goes through the Restart Manager, the supported way to ask
// which processes hold handles on a set of files.

var (
	modRstrtmgr             = windows.NewLazySystemDLL("rstrtmgr.dll")
	procRmStartSession      = modRstrtmgr.NewProc("RmStartSession")
	procRmRegisterResources = modRstrtmgr.NewProc("RmRegisterResources")
	procRmGetList           = modRstrtmgr.NewProc("RmGetList")
	procRmEndSession        = modRstrtmgr.NewProc("RmEndSession")
)

const (
	cchRmSessionKey   = 32
	cchRmMaxAppName   = 255
	cchRmMaxSvcName   = 63
	rmStatusRunning   = 0x1
	rmInvalidProcess  = 0xFFFFFFFF
	errorMoreDataCode = 234
)

type rmUniqueProcess struct {
	ProcessID        uint32
	ProcessStartTime windows.Filetime
}

type rmProcessInfo struct {
	Process          rmUniqueProcess
	AppName          [cchRmMaxAppName + 1]uint16
	ServiceShortName [cchRmMaxSvcName + 1]uint16
	ApplicationType  uint32
	AppStatus        uint32
	TSSessionID      uint32
	Restartable      int32
}

func lockHolders(ctx context.Context, paths []string) ([]LockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session uint32
	key := make([]uint16, cchRmSessionKey+1)
	if rc, _, _ := procRmStartSession.Call(
		uintptr(unsafe.Pointer(&session)), 0,
		uintptr(unsafe.Pointer(&key[0]))); rc != 0 {
		return nil, fmt.Errorf("RmStartSession: error %d", rc)
	}
	defer procRmEndSession.Call(uintptr(session))

	wide := make([]*uint16, 0, len(paths))
	for _, p := range paths {
		w, err := windows.UTF16PtrFromString(p)
		if err != nil {
			continue
		}
		wide = append(wide, w)
	}
	if len(wide) == 0 {
		return nil, nil
	}

	if rc, _, _ := procRmRegisterResources.Call(
		uintptr(session),
		uintptr(len(wide)), uintptr(unsafe.Pointer(&wide[0])),
		0, 0, 0, 0); rc != 0 {
		return nil, fmt.Errorf("RmRegisterResources: error %d", rc)
	}

	var needed, count, reasons uint32
	rc, _, _ := procRmGetList.Call(
		uintptr(session),
		uintptr(unsafe.Pointer(&needed)),
		uintptr(unsafe.Pointer(&count)),
		0,
		uintptr(unsafe.Pointer(&reasons)))
	if rc != 0 && rc != errorMoreDataCode {
		return nil, fmt.Errorf("RmGetList: error %d", rc)
	}
	if needed == 0 {
		return nil, nil
	}

	info := make([]rmProcessInfo, needed)
	count = needed
	if rc, _, _ := procRmGetList.Call(
		uintptr(session),
		uintptr(unsafe.Pointer(&needed)),
		uintptr(unsafe.Pointer(&count)),
		uintptr(unsafe.Pointer(&info[0])),
		uintptr(unsafe.Pointer(&reasons))); rc != 0 {
		return nil, fmt.Errorf("RmGetList: error %d", rc)
	}

	// The Restart Manager reports holders per session, not per file, so the
	// first registered path stands in for the whole query.
	target := paths[0]
	var holders []LockRecord
	for i := uint32(0); i < count; i++ {
		pi := &info[i]
		pid := pi.Process.ProcessID
		if pid == 0 || pid == rmInvalidProcess || pi.AppStatus&rmStatusRunning == 0 {
			continue
		}
		name := windows.UTF16ToString(pi.AppName[:])
		if name == "" {
			name = fmt.Sprintf("pid %d", pid)
		}
		holders = append(holders, LockRecord{
			Path: target,
			PID:  int32(pid),
			Name: name,
		})
	}
	return holders, nil
}
