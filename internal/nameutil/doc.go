// Package nameutil normalizes free-text person names and scores approximate
// similarity between them.
//
// Normalization lowercases, strips diacritics and punctuation, and splits the
// name into tokens. Comparison is token-order-insensitive: "Smith, John" and
// "John Smith" produce the same token set and score 100 against each other.
// Scores are levenshtein ratios over the token-sorted forms, in [0, 100].
package nameutil
