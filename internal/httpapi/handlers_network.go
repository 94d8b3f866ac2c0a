package httpapi

import (
	"net"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/nhaun24/followspot/internal/input"
)

type networkAdapter struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses"`
	Up        bool     `json:"up"`
}

// handleNetworkAdapters implements GET /api/network/adapters, a
// supplemented discovery endpoint so the UI can offer a choice of
// sACN bind address instead of requiring it typed in by hand.
func (s *Server) handleNetworkAdapters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn().Err(err).Msg("httpapi: enumerate network interfaces failed")
		writeJSON(w, http.StatusOK, []networkAdapter{})
		return
	}
	out := make([]networkAdapter, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		a := networkAdapter{Name: iface.Name, Up: iface.Flags&net.FlagUp != 0}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			a.Addresses = append(a.Addresses, ipnet.IP.String())
		}
		if len(a.Addresses) > 0 {
			out = append(out, a)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUSBDevices implements GET /api/usb/devices, enumerating
// joystick device nodes for the operator to pick from.
func (s *Server) handleUSBDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	devices, err := input.ListDevices()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}
