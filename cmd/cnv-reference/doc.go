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

/*
cnv-reference pools per-sample copy-number coverage tables into one robust
reference profile, the neutral baseline that later copy-number calling
normalizes against.

Samples of different sex are reconciled to a single sex-chromosome ploidy
convention before pooling, and each probe is summarized across samples with
outlier-resistant biweight estimators.  With a genome FASTA (indexed by
"samtools faidx"), each probe is annotated with its GC and repeat-masked
fraction.  Probes whose pooled statistics fail the quality thresholds are
reported on stderr; they are not removed from the output.

Sample usage:
cnv-reference \
    -fasta genome.fa \
    -out reference.cnn \
    normal1.cnn normal2.cnn normal3.cnn

With no normal samples available, a flat all-neutral reference can be built
from a target interval list instead:
cnv-reference -targets targets.bed -out reference.cnn
*/
package main
