package render

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-card/internal/location"
	"github.com/i474232898/weather-card/internal/presentation"
)

// ColdBelow is the temperature under which the card shows the cold marker.
const ColdBelow = 20.0

const (
	msgWaiting     = "Thanks! I can access your exact location :D"
	msgApproximate = "Yay! Thanks for letting me access your approximate location. " +
		"But you know what would be great? If you allow me to know where you exactly are. Thank you!"
	msgRationale = "Getting your exact location is important for this app. " +
		"Please grant us fine location. Thank you :D"
	msgRequired = "This feature requires location permission"
)

// PermissionPrompt returns the text asking for location access, or "" when
// both coarse and fine access are granted.
func PermissionPrompt(p location.Permissions) string {
	switch {
	case location.AllGranted(p):
		return ""
	case location.AnyGranted(p):
		return msgApproximate
	case location.ShouldShowRationale(p):
		return msgRationale
	default:
		return msgRequired
	}
}

// Card writes the weather card for st to w.
func Card(w io.Writer, p location.Permissions, st presentation.State) error {
	if prompt := PermissionPrompt(p); prompt != "" {
		_, err := fmt.Fprintln(w, prompt)
		return err
	}
	if !st.Loaded {
		_, err := fmt.Fprintln(w, msgWaiting)
		return err
	}

	marker := "hot"
	if st.Data.Temperature < ColdBelow {
		marker = "cold"
	}
	title := cases.Title(language.English)

	var b strings.Builder
	b.WriteString("Weather Details\n")
	fmt.Fprintf(&b, "%s  %s\n", st.Data.Name, st.Data.Time)
	fmt.Fprintf(&b, "[%s] %s\n", marker, title.String(st.Data.WeatherDescription))
	if st.LastError != "" {
		fmt.Fprintf(&b, "last update failed: %s\n", st.LastError)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
