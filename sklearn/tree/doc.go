// Package tree implements binary regression trees grown by greedy
// minimisation of the summed squared error.
//
// Every internal node holds a test x[Feature] <= Threshold; rows passing the
// test go left. Leaves predict the mean target of the training rows that
// reached them. Growth stops at MaxDepth, when a node holds fewer than
// 2*MinSamplesSplit rows, when its mean squared error is below MinMSE, or
// when no candidate split reduces the error by more than MinGain.
//
// # Functional API
//
// Fit builds an immutable *Tree that can be walked and queried directly:
//
//	t, err := tree.Fit(X, y, tree.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	yhat, err := t.PredictOne([]float64{3.2, 1.0})
//
// # scikit-learn Compatible API
//
// DecisionTreeRegressor wraps the same builder behind the estimator surface
// used across this module:
//
//	reg := tree.NewDecisionTreeRegressor(
//	    tree.WithMaxDepth(8),
//	    tree.WithMinSamplesSplit(5),
//	    tree.WithNJobs(-1), // build large subtrees concurrently
//	)
//	if err := reg.Fit(XTrain, yTrain); err != nil {
//	    log.Fatal(err)
//	}
//	predictions, _ := reg.Predict(XTest)
//	r2, _ := reg.Score(XTest, yTest)
//
// # Inspection
//
// ExportText prints the tree in the layout of sklearn.tree.export_text,
// ExportGraphviz renders it through Graphviz, and FeatureImportances reports
// the share of the squared error reduction contributed by each feature.
// Flatten and Unflatten convert a tree to and from a pre-order node list,
// which package modelstore uses for persistence.
package tree
