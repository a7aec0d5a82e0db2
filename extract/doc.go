// Package extract derives steering vectors from contrastive example pairs.
//
// The only built-in method is Contrastive Activation Addition (CAA): for each
// target layer, run the model once on every positive text and once on every
// negative text, fold the selected token position into running means, and
// take the difference of means as the steering direction. The running-mean
// form keeps memory constant in the dataset size.
package extract
