package main

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mchtech/tilecache"
	"github.com/mchtech/tilecache/config"
)

var forceFetch bool

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&forceFetch, "force", false, "bypass freshness check and dedup short-circuit")
}

var getCmd = &cobra.Command{
	Use:   "get URL",
	Short: "Fetch URL through the cache, blocking until it completes",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	url := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend, err := config.NewBackend(cfg.Cache)
	if err != nil {
		return err
	}

	httpCfg := tilecache.HTTPConfig{
		ConnectTimeout: cfg.HTTP.ConnectTimeout(),
		ReadTimeout:    cfg.HTTP.ReadTimeout(),
		Headers:        toHeader(cfg.HTTP.Headers),
	}

	loader := tilecache.NewLoader(backend, &tilecache.HTTPTransport{}, httpCfg, cfg.Cache.MaxThreads)

	var wg sync.WaitGroup
	wg.Add(1)

	var (
		resultAttrs  tilecache.Attributes
		resultResult tilecache.LoadResult
	)

	err = loader.Submit(url, tilecache.Capabilities{}, forceFetch || cfg.Force, func(content []byte, attrs tilecache.Attributes, result tilecache.LoadResult) {
		resultAttrs = attrs
		resultResult = result
		wg.Done()
	})
	if err != nil {
		return err
	}
	wg.Wait()

	if viper.GetBool("debug") {
		fmt.Printf("result=%s status=%d expires=%s\n", resultResult, resultAttrs.ResponseCode, time.UnixMilli(resultAttrs.ExpirationTime))
	}

	if resultResult != tilecache.Success {
		return fmt.Errorf("tilefetch: %s: %s", url, resultAttrs.ErrorMessage)
	}
	fmt.Printf("status=%d etag=%q expires=%s\n", resultAttrs.ResponseCode, resultAttrs.ETag, time.UnixMilli(resultAttrs.ExpirationTime))
	return nil
}

func toHeader(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}
