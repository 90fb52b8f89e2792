// Package neat provides a Go implementation of the NeuroEvolution of Augmenting Topologies (NEAT) algorithm.
//
// NEAT is a genetic algorithm for the generation of evolving artificial neural networks.
// It alters both the weighting parameters and structures of networks, attempting to find
// a balance between the fitness of evolved solutions and their diversity.
//
// This implementation follows the original paper by Kenneth O. Stanley and Risto Miikkulainen.
// Structural mutations are recorded in a run-wide innovation ledger, genomes are grouped
// into species by compatibility distance, and offspring are allotted to species by shared
// fitness. Networks may contain recurrent links and are evaluated in snapshot mode.
//
// Basic usage:
//
//	// Load configuration
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Score networks by their error on a training set
//	score, err := neat.NewTrainingSetScore(inputs, ideals)
//	if err != nil {
//		log.Fatalf("Error in training set: %v", err)
//	}
//
//	trainer, err := neat.NewTrainer(config, score)
//	if err != nil {
//		log.Fatalf("Error creating trainer: %v", err)
//	}
//
//	// Run for 100 generations
//	for i := 0; i < 100; i++ {
//		if err := trainer.Iteration(); err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//	}
//
//	network, err := trainer.BestNetwork()
package neat
