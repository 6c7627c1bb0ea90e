package main

import (
	"errors"
	"html/template"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"

	"github.com/bengarrett/ansitag"
)

const maxUploadSize = 8 << 20 // 8 MiB

type server struct {
	wwwroot string
}

func run(cfg config) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.port))
	log.Printf("Server running at http://%s", addr)
	log.Printf("Serving static files from: %s", cfg.wwwroot)
	srv := &server{wwwroot: cfg.wwwroot}
	return http.ListenAndServe(addr, srv.routes())
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("POST /upload", s.upload)
	mux.Handle("GET /static/",
		http.StripPrefix("/static/", http.FileServer(http.Dir(s.wwwroot))))
	return mux
}

func (s *server) index(w http.ResponseWriter, _ *http.Request) {
	if err := indexTmpl.Execute(w, nil); err != nil {
		log.Printf("index template: %v", err)
	}
}

// upload converts a multipart file upload and renders the viewer page. The
// three checkbox fields map directly onto the converter options.
func (s *server) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Could not parse the upload form", http.StatusBadRequest)
		return
	}
	opts := ansitag.Options{
		UTF8Input:       r.FormValue("utf8_input") != "",
		SynchronetCtrlA: r.FormValue("synchronet") != "",
		RenegadePipe:    r.FormValue("renegade") != "",
	}

	name := "upload"
	content := template.HTML("<p>No file uploaded</p>")
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		p, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "Could not read the upload", http.StatusInternalServerError)
			return
		}
		if header.Filename != "" {
			name = header.Filename
		}
		html, err := ansitag.ConvertWithOptions(p, opts)
		if errors.Is(err, ansitag.ErrUTF8) {
			http.Error(w, "The upload is not valid UTF-8 text", http.StatusUnprocessableEntity)
			return
		}
		log.Printf("converted %s (%s)", name,
			strings.ToLower(bytefmt.ByteSize(uint64(len(p)))))
		content = template.HTML(html)
	}

	data := struct {
		Name    string
		Content template.HTML
	}{Name: name, Content: content}
	if err := viewerTmpl.Execute(w, data); err != nil {
		log.Printf("viewer template: %v", err)
	}
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ANSI File Converter</title>
    <link rel="stylesheet" href="/static/style.css">
</head>
<body>
    <header>
        <h1>ANSI File Converter</h1>
    </header>
    <main>
        <h2>Upload a .msg or .ans file</h2>
        <form class="upload-form" action="/upload" method="post" enctype="multipart/form-data">
            <div class="file-input-wrapper">
                <label for="file">Select File:</label>
                <input type="file" id="file" name="file" accept=".msg,.ans,.txt">
            </div>
            <fieldset class="options-fieldset">
                <legend>Input Options</legend>
                <div class="checkbox-wrapper">
                    <input type="checkbox" id="utf8_input" name="utf8_input" value="1">
                    <label for="utf8_input">UTF-8 input (skip CP437 conversion, only convert control chars)</label>
                </div>
            </fieldset>
            <fieldset class="options-fieldset">
                <legend>BBS Color Code Options</legend>
                <div class="checkbox-wrapper">
                    <input type="checkbox" id="synchronet" name="synchronet" value="1">
                    <label for="synchronet">Synchronet Ctrl-A codes</label>
                </div>
                <div class="checkbox-wrapper">
                    <input type="checkbox" id="renegade" name="renegade" value="1">
                    <label for="renegade">Renegade pipe codes (|00-|23)</label>
                </div>
            </fieldset>
            <button type="submit">Convert &amp; View</button>
        </form>
        <p class="help-text">
            Supported formats: .msg, .ans (ANSI art files with CP437 encoding)
        </p>
    </main>
</body>
</html>`))

var viewerTmpl = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Name}} - ANSI Viewer</title>
    <link rel="stylesheet" href="/static/style.css">
    <link rel="stylesheet" href="/static/ansi-display.css">
    <script src="/static/ansi-display.js"></script>
</head>
<body>
    <header>
        <h1>ANSI Viewer</h1>
        <nav><a href="/">&larr; Upload Another File</a></nav>
    </header>
    <main class="viewer">
        <h2>{{.Name}}</h2>
        <div class="ansi-container">
            {{.Content}}
        </div>
    </main>
</body>
</html>`))
