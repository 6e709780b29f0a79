package model

// CaseListing is one row of the archive's case table for a year: the case
// name as rendered and the media player page its video link opens.
type CaseListing struct {
	CaseName       string
	MediaPlayerURL string
}

// ResolvedCase pairs a listing with its streaming manifest. An empty
// ManifestURL means resolution failed and the case is skipped downstream.
type ResolvedCase struct {
	CaseName    string
	ManifestURL string
}

// DownloadRequest is handed to the external downloader. OutputPrefix is the
// path without extension; the downloader's output template appends one.
type DownloadRequest struct {
	OutputPrefix string
	ManifestURL  string
}
