// plytool is a CLI utility for working with binary Stanford PLY meshes.
package main

func main() {
	Execute()
}
