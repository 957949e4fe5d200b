// Copyright © 2017 Will Rowe <will.rowe@stfc.ac.uk>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mholt/archiver"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/will-rowe/kwindex/src/indexer"
	"github.com/will-rowe/kwindex/src/misc"
	"github.com/will-rowe/kwindex/src/reporting"
	"github.com/will-rowe/kwindex/src/seqio"
	"github.com/will-rowe/kwindex/src/version"
)

// the recognised input extensions
var (
	fastxExts   = []string{"fa", "fasta", "fna", "ffn", "fq", "fastq"}
	bamExts     = []string{"bam"}
	msaExts     = []string{"msa"}
	archiveExts = []string{"tar", "tgz", "zip"}
)

// the command line arguments
var (
	kSize      *uint64   // size of k-mer (minimizer)
	wSize      *uint64   // number of consecutive k-mers in a window
	inputFiles *[]string // the sequence files to index
	topN       *int      // number of repetitive k-mers to report
	plotFile   *string   // where to save the gap histogram
)

// the index command (used by cobra)
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build a (k,w)-minimizer index for a set of sequences and report on it",
	Long:  `Build a (k,w)-minimizer index for a set of sequences and report on it`,
	Run: func(cmd *cobra.Command, args []string) {
		runIndex()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	kSize = indexCmd.Flags().Uint64P("kmerSize", "k", 15, "size of k-mer (minimizer)")
	wSize = indexCmd.Flags().Uint64P("windowSize", "w", 10, "number of consecutive k-mers in a window")
	inputFiles = indexCmd.Flags().StringSliceP("input", "i", []string{}, "FASTA/FASTQ (optionally gzipped), BAM or MSA files, or archives of them - required")
	topN = indexCmd.Flags().IntP("top", "t", 10, "number of repetitive k-mers to report")
	plotFile = indexCmd.Flags().String("plot", "", "save a histogram of the gaps between minimizers to this file (e.g. gaps.png)")
	indexCmd.MarkFlagRequired("input")
	RootCmd.AddCommand(indexCmd)
}

// a function to check user supplied parameters
func indexParamCheck() error {
	if *kSize == 0 || *wSize == 0 {
		return fmt.Errorf("k-mer size and window size must both be greater than 0")
	}
	for _, file := range *inputFiles {
		if err := misc.CheckFile(file); err != nil {
			return err
		}
	}

	// set number of processors to use
	if *proc <= 0 || *proc > runtime.NumCPU() {
		*proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*proc)
	return nil
}

// collectInputs unpacks any archives and returns the sequence files to index
func collectInputs(inputs []string, tmpDir string) ([]string, error) {
	collected := []string{}
	for i, input := range inputs {
		if misc.CheckExt(input, archiveExts) != nil {
			collected = append(collected, input)
			continue
		}
		unpackDir := filepath.Join(tmpDir, fmt.Sprintf("archive-%d", i))
		if err := archiver.Unarchive(input, unpackDir); err != nil {
			return nil, fmt.Errorf("could not unpack %v: %w", input, err)
		}
		err := filepath.Walk(unpackDir, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// ignore directories, dot files and anything that isn't a sequence file
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				return nil
			}
			if openerFor(path) != nil {
				collected = append(collected, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return collected, nil
}

// sourceOpener opens a sequence file as a source
type sourceOpener func(path string) (seqio.Source, io.Closer, error)

// openerFor picks the reader for a file from its extension
func openerFor(path string) sourceOpener {
	switch {
	case misc.CheckExt(path, fastxExts) == nil:
		return func(path string) (seqio.Source, io.Closer, error) {
			src, err := seqio.OpenFastx(path)
			return src, src, err
		}
	case misc.CheckExt(path, bamExts) == nil:
		return func(path string) (seqio.Source, io.Closer, error) {
			src, err := seqio.OpenBAM(path)
			return src, src, err
		}
	case misc.CheckExt(path, msaExts) == nil:
		return func(path string) (seqio.Source, io.Closer, error) {
			src, err := seqio.OpenMSA(path)
			return src, src, err
		}
	}
	return nil
}

// openSources opens every input file and chains them into one source
func openSources(files []string) (seqio.Source, []io.Closer, error) {
	sources := []seqio.Source{}
	closers := []io.Closer{}
	for _, file := range files {
		opener := openerFor(file)
		if opener == nil {
			return nil, closers, fmt.Errorf("file does not have a recognised sequence extension: %v", file)
		}
		src, closer, err := opener(file)
		if err != nil {
			return nil, closers, err
		}
		sources = append(sources, src)
		closers = append(closers, closer)
		log.Printf("\tinput: %v", file)
	}
	return seqio.NewMultiSource(sources...), closers, nil
}

/*
  The main function for the index command
*/
func runIndex() {
	// set up profiling
	if *profiling {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}

	// start logging
	if *logFile != "" {
		logFH := misc.StartLogging(*logFile)
		defer logFH.Close()
		log.SetOutput(logFH)
	} else {
		log.SetOutput(os.Stdout)
	}
	start := time.Now()
	log.Printf("kwindex (version %s)", version.GetVersion())
	log.Printf("starting the index subcommand")

	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	misc.ErrorCheck(indexParamCheck())
	log.Printf("\tprocessors: %d", *proc)
	log.Printf("\tk-mer size: %d", *kSize)
	log.Printf("\twindow size: %d", *wSize)

	// unpack archives and open the inputs
	tmpDir, err := ioutil.TempDir("", "kwindex-")
	misc.ErrorCheck(err)
	defer os.RemoveAll(tmpDir)
	files, err := collectInputs(*inputFiles, tmpDir)
	misc.ErrorCheck(err)
	log.Printf("\tnumber of sequence files found: %d", len(files))
	src, closers, err := openSources(files)
	defer func() {
		for _, closer := range closers {
			closer.Close()
		}
	}()
	misc.ErrorCheck(err)

	// build the index
	ig := indexer.NewIndexGenerator(*kSize, *wSize, *proc)
	misc.ErrorCheck(ig.Construct(src))
	idx, err := ig.Index()
	misc.ErrorCheck(err)
	log.Printf("\tmemory usage: %v", misc.PrintMemUsage())

	// report on the index
	summary := reporting.Summarise(idx, ig.MinimizerSize(), ig.WindowSize(), *topN)
	misc.ErrorCheck(summary.Write(os.Stdout))
	if *plotFile != "" {
		misc.ErrorCheck(summary.PlotGaps(*plotFile))
		log.Printf("\tsaved gap histogram to %v", *plotFile)
	}
	log.Printf("finished in %v", time.Since(start))
}
