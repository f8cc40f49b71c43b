package wordfreq

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bcongdon/wordfreq/internal/pkg/wffs"
)

// Driver reads input text, counts it and writes a report
type Driver struct {
	config   *config
	executor executor
	stdout   io.Writer
}

// config configures a Driver's execution
type config struct {
	Inputs         []string
	WordToQuery    string
	MaxConcurrency int
	ChunkSize      int
	Output         string
	Format         string
	TopN           int
	Progress       bool
}

func newConfig() *config {
	loadConfig() // Load viper config from settings file(s) and environment
	return &config{
		Inputs:         []string{},
		WordToQuery:    viper.GetString("word_to_query"),
		MaxConcurrency: viper.GetInt("max_concurrency"),
		ChunkSize:      viper.GetInt("chunk_size"),
		Output:         viper.GetString("output"),
		Format:         viper.GetString("format"),
		TopN:           viper.GetInt("top_n"),
		Progress:       viper.GetBool("progress"),
	}
}

// Option allows configuration of a Driver
type Option func(*config)

// NewDriver creates a new Driver with optional configuration
func NewDriver(options ...Option) *Driver {
	d := &Driver{
		executor: localExecutor{},
		stdout:   os.Stdout,
	}

	c := newConfig()
	for _, f := range options {
		f(c)
	}
	d.config = c

	if viper.GetBool("verbose") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debugf("Loaded config: %#v", c)

	return d
}

// WithInputs adds input locations (paths, globs or s3:// URIs)
func WithInputs(inputs ...string) Option {
	return func(c *config) {
		c.Inputs = append(c.Inputs, inputs...)
	}
}

// WithWordToQuery sets the word whose count is reported
func WithWordToQuery(word string) Option {
	return func(c *config) {
		c.WordToQuery = word
	}
}

// WithMaxConcurrency sets the number of concurrent counting workers
func WithMaxConcurrency(n int) Option {
	return func(c *config) {
		c.MaxConcurrency = n
	}
}

// WithChunkSize sets the maximum number of tokens per chunk
func WithChunkSize(n int) Option {
	return func(c *config) {
		c.ChunkSize = n
	}
}

// WithOutput sets the location the report is written to
func WithOutput(location string) Option {
	return func(c *config) {
		c.Output = location
	}
}

// WithFormat sets the report format: text, json or yaml
func WithFormat(format string) Option {
	return func(c *config) {
		c.Format = format
	}
}

// WithTopN limits the report to the n most frequent words
func WithTopN(n int) Option {
	return func(c *config) {
		c.TopN = n
	}
}

// WithProgress enables or disables the progress bar
func WithProgress(enabled bool) Option {
	return func(c *config) {
		c.Progress = enabled
	}
}

func (d *Driver) counter() *Counter {
	return &Counter{
		Workers:   d.config.MaxConcurrency,
		ChunkSize: d.config.ChunkSize,
	}
}

func (d *Driver) inputs() []string {
	if len(d.config.Inputs) == 0 {
		return []string{viper.GetString("default_input")}
	}
	return d.config.Inputs
}

// nopCloser keeps the driver from closing stdout
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// reportName is the file a report gets when the output location is a directory
func reportName(format string) string {
	switch format {
	case "json", "yaml":
		return "wordfreq." + format
	}
	return "wordfreq.txt"
}

// reportLocation resolves the configured output location on fs. A location
// ending in a slash names a directory that receives the report.
func (d *Driver) reportLocation(fs wffs.FileSystem) string {
	if strings.HasSuffix(d.config.Output, "/") {
		return fs.Join(d.config.Output, reportName(d.config.Format))
	}
	return d.config.Output
}

func (d *Driver) openOutput() (io.WriteCloser, error) {
	if d.config.Output == "" {
		return nopCloser{d.stdout}, nil
	}
	fs := wffs.InferFilesystem(d.config.Output)
	location := d.reportLocation(fs)
	log.Debugf("Writing report to %s", location)
	return fs.OpenWriter(location)
}

func (d *Driver) writeReport(table *Table) error {
	writer, err := d.openOutput()
	if err != nil {
		return err
	}

	emitter, err := newEmitter(d.config.Format, writer)
	if err != nil {
		writer.Close()
		return err
	}

	report := Report{
		Table:       table,
		WordToQuery: d.config.WordToQuery,
		TopN:        d.config.TopN,
	}
	if err := emitter.Emit(report); err != nil {
		emitter.close()
		return err
	}
	if err := emitter.close(); err != nil {
		return err
	}

	log.Debugf("Wrote %s report", humanize.Bytes(uint64(emitter.bytesWritten())))
	return nil
}

// Run counts the configured inputs and writes the report. If any input
// cannot be read, Run returns an *InputError and writes nothing.
func (d *Driver) Run() (*Table, error) {
	if err := checkFormat(d.config.Format); err != nil {
		return nil, err
	}

	table, err := d.executor.Count(d, d.inputs())
	if err != nil {
		return nil, err
	}

	if err := d.writeReport(table); err != nil {
		return table, err
	}
	return table, nil
}

var (
	wordFlag       = flag.StringP("word", "w", "", "Word whose count is reported")
	outputFlag     = flag.StringP("out", "o", "", "Report location (local path or s3:// URI)")
	formatFlag     = flag.String("format", "", "Report format: text, json or yaml")
	topFlag        = flag.Int("top", 0, "Only list the N most frequent words")
	workersFlag    = flag.IntP("workers", "j", 0, "Number of concurrent counting workers")
	chunkSizeFlag  = flag.Int("chunk-size", 0, "Maximum number of tokens per chunk")
	verboseFlag    = flag.BoolP("verbose", "v", false, "Output verbose logs")
	noProgressFlag = flag.Bool("no-progress", false, "Hide the progress bar")
	lambdaFlag     = flag.Bool("lambda", false, "Count inside an AWS Lambda function")
	undeployFlag   = flag.Bool("undeploy", false, "Delete the AWS Lambda function and its role, then exit")
	memprofile     = flag.String("memprofile", "", "write memory profile to `file`")
)

// applyFlags overrides configuration with flags given on the command line
func (d *Driver) applyFlags() {
	d.config.Inputs = append(d.config.Inputs, flag.Args()...)

	if flag.CommandLine.Changed("word") {
		d.config.WordToQuery = *wordFlag
	}
	if flag.CommandLine.Changed("out") {
		d.config.Output = *outputFlag
	}
	if flag.CommandLine.Changed("format") {
		d.config.Format = *formatFlag
	}
	if flag.CommandLine.Changed("top") {
		d.config.TopN = *topFlag
	}
	if flag.CommandLine.Changed("workers") {
		d.config.MaxConcurrency = *workersFlag
	}
	if flag.CommandLine.Changed("chunk-size") {
		d.config.ChunkSize = *chunkSizeFlag
	}
	if *noProgressFlag {
		d.config.Progress = false
	}
	if *verboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// logRunError logs why a run failed
func logRunError(err error) {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		log.Errorf("Error reading file: %s", inputErr)
		return
	}
	log.Error(err)
}

// Main starts the Driver, running as a Lambda function handler when
// deployed to AWS Lambda.
//
// If any input cannot be read, Main logs "Error reading file: ..." and exits
// with status 1 without printing a report. Other failures also exit with
// status 1.
func (d *Driver) Main() {
	if runningInLambda() {
		lambda.Start(handleRequest)
	}

	flag.Parse()
	d.applyFlags()

	if *lambdaFlag || *undeployFlag {
		executor := newLambdaExecutor(viper.GetString("lambda_function_name"))
		if *undeployFlag {
			if err := executor.Undeploy(); err != nil {
				log.Fatalf("Could not delete lambda function: %s", err)
			}
			return
		}
		if err := executor.Deploy(); err != nil {
			log.Fatalf("Could not deploy lambda function: %s", err)
		}
		d.executor = executor
	}

	start := time.Now()
	_, err := d.Run()
	if err != nil {
		logRunError(err)
		os.Exit(1)
	}
	log.Infof("Execution time: %s", time.Since(start))

	if *memprofile != "" {
		if err := writeMemProfile(*memprofile); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer f.Close()

	runtime.GC() // get up-to-date statistics
	return pprof.WriteHeapProfile(f)
}
