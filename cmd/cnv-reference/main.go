// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/grailbio/cnvref/annotate"
	"github.com/grailbio/cnvref/cnv"
	"github.com/grailbio/cnvref/genome"
	"github.com/grailbio/cnvref/reference"
)

var (
	fastaPath  = flag.String("fasta", "", "Genome FASTA path; enables GC and repeat-mask annotation of the output. A matching .fai index must exist")
	indexPath  = flag.String("fasta-index", "", "FASTA index path (default -fasta value + .fai)")
	targets    = flag.String("targets", "", "Target BED path; builds a flat all-neutral reference instead of pooling samples")
	maleNormal = flag.Bool("male-normal", false, "Build the reference for a male-normal (one copy of X) ploidy convention")
	outPath    = flag.String("out", "reference.cnn", "Output reference path")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] sample1.cnn [sample2.cnn ...]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	samplePaths := flag.Args()
	var (
		ref      *cnv.Profile
		gcReused bool
		err      error
	)
	switch {
	case *targets != "":
		if len(samplePaths) != 0 {
			log.Fatalf("-targets builds a flat reference and cannot be combined with sample files")
		}
		var regions []cnv.Region
		if regions, err = cnv.ReadBEDFile(*targets); err != nil {
			log.Fatalf("%s: %v", *targets, err)
		}
		ref = reference.Flat(regions, *fastaPath != "")
		ref.Sample = cnv.SampleName(*targets)
	case len(samplePaths) == 0:
		log.Fatalf("Missing positional arguments (sample coverage files required); pass -targets to build a flat reference instead")
	default:
		var samples []*cnv.Profile
		if samples, err = reference.LoadFiles(samplePaths); err != nil {
			log.Fatalf("%v", err)
		}
		gcReused = samples[0].HasGC
		opts := reference.Opts{
			MaleNormal: *maleNormal,
			HasGenome:  *fastaPath != "",
		}
		if ref, err = reference.Combine(samples, opts); err != nil {
			log.Fatalf("%v", err)
		}
	}

	if *fastaPath != "" {
		if err = annotateFromFasta(ref, *fastaPath, *indexPath, gcReused); err != nil {
			log.Fatalf("%v", err)
		}
	}

	reference.WarnBadProbes(os.Stderr, ref, reference.DefaultThresholds)

	if err = cnv.WriteProfileFile(*outPath, ref); err != nil {
		log.Fatalf("%s: %v", *outPath, err)
	}
	log.Printf("wrote reference with %d probes to %s", ref.Len(), *outPath)
}

// annotateFromFasta fills the reserved composition columns of ref from an
// indexed genome FASTA.  A gc column reused from the first sample is kept
// unmodified; only rmask is computed in that case.
func annotateFromFasta(ref *cnv.Profile, fastaPath, indexPath string, gcReused bool) (err error) {
	if indexPath == "" {
		indexPath = fastaPath + ".fai"
	}
	log.Printf("calculating GC and RepeatMasker content in %s", fastaPath)
	ctx := vcontext.Background()
	var faFile, idxFile file.File
	if faFile, err = file.Open(ctx, fastaPath); err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, faFile, &err)
	if idxFile, err = file.Open(ctx, indexPath); err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, idxFile, &err)
	fa, err := genome.NewIndexed(faFile.Reader(ctx), idxFile.Reader(ctx))
	if err != nil {
		return err
	}
	return annotate.Apply(ref, fa, gcReused)
}
