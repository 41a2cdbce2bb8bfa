// Package confloader loads configuration with koanf and watches the
// configuration file for changes.
//
// Sources, later overriding earlier:
//
//  1. Defaults: the values already present in the target struct
//  2. YAML file
//  3. Environment variables
//  4. Maps (command-line flags)
//
// Environment variables drop the prefix, are lowercased, and use a double
// underscore to separate sections, so TIMEKEEP_STORAGE__DATA_DIR sets
// storage.data_dir and TIMEKEEP_LOG__LEVEL sets log.level.
package confloader
