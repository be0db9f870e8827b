package weather

import "errors"

var (
	// ErrPermissionDenied is returned when neither coarse nor fine location
	// permission has been granted. No updates are subscribed in that case.
	ErrPermissionDenied = errors.New("location permission not granted")

	// ErrNetworkFailure covers transport errors and non-2xx responses.
	ErrNetworkFailure = errors.New("weather request failed")

	// ErrDecodeFailure covers malformed or incomplete provider payloads.
	ErrDecodeFailure = errors.New("malformed weather response")
)
