// Package reembed generates and stores chunk embeddings for guideline
// documents. Re-embedding a document always deletes its previous vector
// set first, so the stored vectors track the current chunking exactly
// and the operation can be repeated safely.
package reembed
