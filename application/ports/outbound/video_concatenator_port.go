package outbound

// VideoConcatenatorPort joins the given video files, in the given order, into
// one file and returns its name. The input files are consumed.
type VideoConcatenatorPort interface {
	Concatenate(fileNames []string) (string, error)
}
