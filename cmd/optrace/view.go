package main

import (
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view [trace-file]",
	Short: "Serve a recorded trace for inspection in the browser",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true
		serveTrace(args[0])
	},
}

var viewAddr string

func init() {
	viewCmd.Flags().StringVar(&viewAddr, "http", "localhost:3001",
		"HTTP service address")
	rootCmd.AddCommand(viewCmd)
}

func serveTrace(path string) {
	traceJSON, err := os.ReadFile(path)
	dieOnErr(err)

	http.HandleFunc("/", serveViewerIndex)
	http.HandleFunc("/api/trace", func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write(traceJSON)
		dieOnErr(err)
	})

	listener, err := net.Listen("tcp", viewAddr)
	dieOnErr(err)

	url := "http://" + viewAddr
	fmt.Printf("Listening %s\n", url)

	if err := browser.OpenURL(url); err != nil {
		fmt.Fprintf(os.Stderr, "Open %s manually: %v\n", url, err)
	}

	err = http.Serve(listener, nil)
	dieOnErr(err)
}

func serveViewerIndex(w http.ResponseWriter, _ *http.Request) {
	_, err := w.Write([]byte(viewerIndex))
	dieOnErr(err)
}

const viewerIndex = `<!DOCTYPE html>
<html>
<head>
<title>optrace viewer</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-top: 1em; }
td, th { border: 1px solid #bbb; padding: 4px 10px; text-align: right; }
th { background: #eee; }
td:first-child, th:first-child { text-align: left; }
.hint { color: #666; }
</style>
</head>
<body>
<h1>optrace viewer</h1>
<p class="hint">The raw trace is at <a href="/api/trace">/api/trace</a>;
it also loads in chrome://tracing and ui.perfetto.dev.</p>
<table id="events">
<tr><th>name</th><th>ts (us)</th><th>dur (us)</th><th>flow</th></tr>
</table>
<script>
fetch('/api/trace')
  .then(function (rsp) { return rsp.json(); })
  .then(function (events) {
    var table = document.getElementById('events');
    events.forEach(function (e) {
      var row = table.insertRow();
      row.insertCell().textContent = e.name;
      row.insertCell().textContent = e.ts.toFixed(3);
      row.insertCell().textContent = e.dur.toFixed(3);
      row.insertCell().textContent = e.tid;
    });
  });
</script>
</body>
</html>
`
