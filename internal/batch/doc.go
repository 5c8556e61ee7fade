// Package batch solves many inverse kinematics targets in parallel.
//
// The kinematics core is single-threaded: a chain owns its tree for its
// whole lifetime. A Runner therefore gives every worker a private chain
// from a factory and never shares joint state between goroutines.
//
// # Example
//
//	jobs := batch.Grid(home, batch.Linspace(-0.1, 0.1, 5), nil, nil)
//	r := batch.NewRunner(factory, ik.DefaultConfig(), batch.WithWorkers(4))
//	outcomes, err := r.Run(ctx, jobs)
//	fmt.Println(batch.Summarize(outcomes))
package batch
