//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework AVFoundation
#import <AVFoundation/AVFoundation.h>

int checkMicrophonePermission() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}

void requestMicrophonePermission() {
    [AVCaptureDevice requestAccessForMediaType:AVMediaTypeAudio completionHandler:^(BOOL granted) {}];
}
*/
import "C"

const (
	permissionNotDetermined = 0
	permissionRestricted    = 1
	permissionDenied        = 2
	permissionAuthorized    = 3
)

type platformGate struct{}

// EnsureMicrophone checks the current authorization status and, when not yet
// determined, triggers the system permission dialog. The status is re-read on
// every call so access granted from System Settings is picked up immediately.
func (platformGate) EnsureMicrophone() error {
	status := int(C.checkMicrophonePermission())
	if status == permissionAuthorized {
		return nil
	}
	if status == permissionNotDetermined {
		C.requestMicrophonePermission()
	}
	return ErrDenied
}
