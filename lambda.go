package wordfreq

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/bcongdon/wordfreq/internal/pkg/wfiam"
	"github.com/bcongdon/wordfreq/internal/pkg/wflambda"
)

var (
	tableCache     *lru.Cache
	tableCacheOnce sync.Once
)

// runningInLambda infers if the program is running in AWS lambda via inspection of the environment
func runningInLambda() bool {
	expectedEnvVars := []string{"LAMBDA_TASK_ROOT", "AWS_EXECUTION_ENV", "LAMBDA_RUNTIME_DIR"}
	for _, envVar := range expectedEnvVars {
		if os.Getenv(envVar) == "" {
			return false
		}
	}
	return true
}

// getTableCache returns the tables kept between invocations of a warm container
func getTableCache() *lru.Cache {
	tableCacheOnce.Do(func() {
		size := viper.GetInt("cache_size")
		if size < 1 {
			size = 1
		}
		cache, err := lru.New(size)
		if err != nil {
			log.Fatal(err)
		}
		tableCache = cache
	})
	return tableCache
}

func handleRequest(ctx context.Context, t task) (taskResult, error) {
	files, err := resolveInputs(t.Inputs)
	if err != nil {
		return taskResult{}, err
	}

	// Tables do not depend on worker settings, so only the inputs form the key
	key := inputsKey(files)
	cache := getTableCache()
	if cached, ok := cache.Get(key); ok {
		log.Debugf("Serving cached table for %s", key)
		return taskResult{Table: cached.(*Table), Cached: true}, nil
	}

	tokens, bytesRead, err := readFiles(files)
	if err != nil {
		return taskResult{}, err
	}

	counter := &Counter{Workers: t.Workers, ChunkSize: t.ChunkSize}
	table := counter.Count(tokens)
	cache.Add(key, table)

	return taskResult{Table: table, BytesRead: bytesRead}, nil
}

// lambdaExecutor counts inputs inside a single invocation of a Lambda function
type lambdaExecutor struct {
	*wflambda.LambdaClient
	*wfiam.IAMClient
	functionName string
}

func newLambdaExecutor(functionName string) *lambdaExecutor {
	return &lambdaExecutor{
		wflambda.NewLambdaClient(),
		wfiam.NewIAMClient(),
		functionName,
	}
}

func (l *lambdaExecutor) Count(d *Driver, inputs []string) (*Table, error) {
	payload, err := json.Marshal(task{
		Inputs:    inputs,
		Workers:   d.config.MaxConcurrency,
		ChunkSize: d.config.ChunkSize,
	})
	if err != nil {
		return nil, err
	}

	output, err := l.Invoke(l.functionName, payload)
	if err != nil {
		return nil, err
	}

	var result taskResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, err
	}
	if result.Table == nil {
		result.Table = NewTable()
	}
	log.Debugf("Lambda read %d bytes (cached: %t)", result.BytesRead, result.Cached)

	return result.Table, nil
}

// Deploy creates or updates the counting function and, if managed, its role
func (l *lambdaExecutor) Deploy() error {
	roleARN := viper.GetString("lambda_role_arn")
	if viper.GetBool("lambda_manage_role") {
		var err error
		roleARN, err = l.DeployPermissions(viper.GetString("lambda_role_name"))
		if err != nil {
			return err
		}
	}

	config := &wflambda.FunctionConfig{
		Name:       l.functionName,
		RoleARN:    roleARN,
		Timeout:    viper.GetInt64("lambda_timeout"),
		MemorySize: viper.GetInt64("lambda_memory"),
	}
	return l.DeployFunction(config)
}

// Undeploy deletes the counting function and, if managed, its role
func (l *lambdaExecutor) Undeploy() error {
	if err := l.DeleteFunction(l.functionName); err != nil {
		return err
	}
	if viper.GetBool("lambda_manage_role") {
		return l.DeletePermissions(viper.GetString("lambda_role_name"))
	}
	return nil
}
