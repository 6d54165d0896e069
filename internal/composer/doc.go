// Package composer reads Composer metadata for a PHP project.
//
// LockFileLoader lists the packages declared in composer.lock together with
// their PSR-4 namespace roots, BinaryLocator finds a usable Composer
// executable, and OutdatedChecker runs "composer outdated" through execshell.
package composer
