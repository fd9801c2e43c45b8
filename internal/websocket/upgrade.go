package websocket

import (
	"bufio"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// upgradeWriter hands the 101 status to the server's own writer and hijacks
// through gin. websocket.Accept forces gin's WriteHeaderNow on anything that
// has it, after which gin refuses the hijack, so this type leaves it out.
type upgradeWriter struct {
	gin  gin.ResponseWriter
	base http.ResponseWriter
}

func newUpgradeWriter(w gin.ResponseWriter) *upgradeWriter {
	base := http.ResponseWriter(w)
	if u, ok := w.(interface{ Unwrap() http.ResponseWriter }); ok {
		base = u.Unwrap()
	}
	return &upgradeWriter{gin: w, base: base}
}

func (w *upgradeWriter) Header() http.Header {
	return w.gin.Header()
}

func (w *upgradeWriter) Write(b []byte) (int, error) {
	return w.gin.Write(b)
}

// WriteHeader hands the switch to the server writer, which flushes it when
// the connection is hijacked. gin only records the status.
func (w *upgradeWriter) WriteHeader(code int) {
	w.gin.WriteHeader(code)
	if code == http.StatusSwitchingProtocols {
		w.base.WriteHeader(code)
	}
}

func (w *upgradeWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.gin.Hijack()
}
