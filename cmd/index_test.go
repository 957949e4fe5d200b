package cmd

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/mholt/archiver"
	"github.com/will-rowe/kwindex/src/indexer"
)

// writeFile is a test helper
func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := ioutil.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenerFor(t *testing.T) {
	for _, file := range []string{"a.fa", "a.fastq.gz", "a.bam", "a.msa"} {
		if openerFor(file) == nil {
			t.Fatalf("no reader found for %v", file)
		}
	}
	if openerFor("a.txt") != nil {
		t.Fatal("a.txt should not be treated as a sequence file")
	}
}

func TestCollectAndOpenInputs(t *testing.T) {
	dir := t.TempDir()
	fasta := filepath.Join(dir, "genomes.fa")
	msa := filepath.Join(dir, "cluster.msa")
	writeFile(t, fasta, ">a\nACGTACGT\n>b\nGGTTACGTACCA\n")
	writeFile(t, msa, ">row1\nACGT--ACGT\n>row2\nACGTTTACGT\n")
	tarball := filepath.Join(dir, "refs.tar")
	if err := archiver.Archive([]string{fasta, msa}, tarball); err != nil {
		t.Fatal(err)
	}
	files, err := collectInputs([]string{fasta, tarball}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 sequence files (one loose, two archived), got %v", files)
	}
	src, closers, err := openSources(files)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	ig := indexer.NewIndexGenerator(3, 4, 2)
	if err := ig.Construct(src); err != nil {
		t.Fatal(err)
	}
	idx, err := ig.Index()
	if err != nil {
		t.Fatal(err)
	}
	if idx.NumEntries() == 0 {
		t.Fatal("no minimizers indexed from the inputs")
	}
	if _, _, err := openSources([]string{filepath.Join(dir, "notes.txt")}); err == nil {
		t.Fatal("unrecognised extension should be rejected")
	}
}

