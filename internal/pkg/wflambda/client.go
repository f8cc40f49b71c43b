package wflambda

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
	log "github.com/sirupsen/logrus"
)

// MaxLambdaRetries is the number of times an invocation is retried after
// a function error
const MaxLambdaRetries = 3

// LambdaClient wraps the AWS Lambda API and provides functions for
// deploying and invoking lambda functions
type LambdaClient struct {
	Client lambdaiface.LambdaAPI
}

// FunctionConfig holds the configuration of an individual Lambda function
type FunctionConfig struct {
	Name       string
	RoleARN    string
	Timeout    int64
	MemorySize int64
}

// NewLambdaClient initializes a new LambdaClient
func NewLambdaClient() *LambdaClient {
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))
	return &LambdaClient{
		Client: lambda.New(sess),
	}
}

// functionNeedsUpdate reports whether functionCode differs from the deployed code
func functionNeedsUpdate(functionCode []byte, cfg *lambda.FunctionConfiguration) bool {
	codeHash := sha256.New()
	codeHash.Write(functionCode)
	codeHashDigest := base64.StdEncoding.EncodeToString(codeHash.Sum(nil))
	return cfg.CodeSha256 == nil || codeHashDigest != *cfg.CodeSha256
}

// DeployFunction deploys the current directory as a lamba function.
// An existing function is updated in place.
func (l *LambdaClient) DeployFunction(function *FunctionConfig) error {
	functionCode, err := buildPackage()
	if err != nil {
		return err
	}

	exists, err := l.getFunction(function.Name)
	if exists != nil && exists.Configuration != nil && err == nil {
		return l.updateFunction(function, functionCode, exists.Configuration)
	}

	log.Infof("Creating Lambda function '%s'", function.Name)
	return l.createFunction(function, functionCode)
}

// DeleteFunction tears down the given function
func (l *LambdaClient) DeleteFunction(functionName string) error {
	deleteInput := &lambda.DeleteFunctionInput{
		FunctionName: aws.String(functionName),
	}

	log.Infof("Deleting function '%s'", functionName)
	_, err := l.Client.DeleteFunction(deleteInput)
	return err
}

// crossCompile builds the current directory as a lambda package.
// It returns the location of the built executable.
func crossCompile(binName string) (string, error) {
	tmpDir, err := ioutil.TempDir("", "")
	if err != nil {
		return "", err
	}

	outputPath := filepath.Join(tmpDir, binName)

	args := []string{
		"build",
		"-o", outputPath,
		"-ldflags", "-s -w",
		".",
	}
	cmd := exec.Command("go", args...)

	cmd.Env = append(os.Environ(), "GOOS=linux")

	combinedOut, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s\n%s", err, combinedOut)
	}

	return outputPath, nil
}

// buildPackage builds the current directory as a lambda package.
// It returns a byte slice containing a compressed binary that can be uploaded to lambda.
var buildPackage = func() ([]byte, error) {
	log.Info("Building Lambda function")
	binFile, err := crossCompile("lambda_artifact")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(filepath.Dir(binFile))

	binReader, err := os.Open(binFile)
	if err != nil {
		return nil, err
	}
	defer binReader.Close()

	zipBuf := new(bytes.Buffer)
	archive := zip.NewWriter(zipBuf)
	header := &zip.FileHeader{
		Name:           "main",
		ExternalAttrs:  (0777 << 16), // File permissions
		CreatorVersion: (3 << 8),     // Magic number indicating a Unix creator
	}

	log.Debug("Adding binary to zip archive")
	writer, err := archive.CreateHeader(header)
	if err != nil {
		return nil, err
	}

	_, err = io.Copy(writer, binReader)
	if err != nil {
		return nil, err
	}

	if err := archive.Close(); err != nil {
		return nil, err
	}

	return zipBuf.Bytes(), nil
}

// updateFunction updates the code of a deployed function if it changed,
// and always syncs its configuration
func (l *LambdaClient) updateFunction(function *FunctionConfig, code []byte, deployed *lambda.FunctionConfiguration) error {
	if functionNeedsUpdate(code, deployed) {
		log.Infof("Updating Lambda function code for '%s'", function.Name)
		updateArgs := &lambda.UpdateFunctionCodeInput{
			ZipFile:      code,
			FunctionName: aws.String(function.Name),
		}

		_, err := l.Client.UpdateFunctionCode(updateArgs)
		if err != nil {
			return err
		}
	} else {
		log.Infof("Function '%s' code is already up-to-date", function.Name)
	}

	updateConfigArgs := &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(function.Name),
		Role:         aws.String(function.RoleARN),
		Timeout:      aws.Int64(function.Timeout),
		MemorySize:   aws.Int64(function.MemorySize),
	}

	log.Debugf("Updating Lambda function configuration for '%s'", function.Name)
	_, err := l.Client.UpdateFunctionConfiguration(updateConfigArgs)
	return err
}

func (l *LambdaClient) createFunction(function *FunctionConfig, code []byte) error {
	funcCode := &lambda.FunctionCode{
		ZipFile: code,
	}

	createArgs := &lambda.CreateFunctionInput{
		Code:         funcCode,
		FunctionName: aws.String(function.Name),
		Handler:      aws.String("main"),
		Runtime:      aws.String(lambda.RuntimeGo1X),
		Role:         aws.String(function.RoleARN),
		Timeout:      aws.Int64(function.Timeout),
		MemorySize:   aws.Int64(function.MemorySize),
	}

	_, err := l.Client.CreateFunction(createArgs)
	return err
}

func (l *LambdaClient) getFunction(functionName string) (*lambda.GetFunctionOutput, error) {
	getInput := &lambda.GetFunctionInput{
		FunctionName: aws.String(functionName),
	}

	return l.Client.GetFunction(getInput)
}

// Invoke invokes the given Lambda function with the given payload.
// Function errors are retried up to MaxLambdaRetries times.
func (l *LambdaClient) Invoke(functionName string, payload []byte) ([]byte, error) {
	invokeInput := &lambda.InvokeInput{
		FunctionName: aws.String(functionName),
		Payload:      payload,
	}

	var lastErr error
	for try := 0; try <= MaxLambdaRetries; try++ {
		output, err := l.Client.Invoke(invokeInput)
		if err != nil {
			return nil, err
		}
		if output.FunctionError == nil {
			return output.Payload, nil
		}

		log.Warnf("Function '%s' failed (attempt %d/%d): %s", functionName, try+1, MaxLambdaRetries+1, output.Payload)
		lastErr = errors.New(*output.FunctionError)
	}

	return nil, fmt.Errorf("function '%s' failed after %d attempts: %w", functionName, MaxLambdaRetries+1, lastErr)
}
